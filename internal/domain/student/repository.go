package student

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES (Dependency Inversion)
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет контракт для персистентности профилей.
// Реализация живёт в infrastructure/persistence.
type Repository interface {
	// Create сохраняет новый профиль.
	Create(ctx context.Context, profile *Profile) error

	// GetByID возвращает профиль по внутреннему ID.
	GetByID(ctx context.Context, id string) (*Profile, error)

	// GetByOwner возвращает профиль по ID владельца.
	GetByOwner(ctx context.Context, ownerID string) (*Profile, error)

	// GetByIDForUpdate возвращает профиль с блокировкой строки.
	// Обязан вызываться внутри транзакции.
	GetByIDForUpdate(ctx context.Context, id string) (*Profile, error)

	// Update сохраняет изменённое состояние профиля.
	Update(ctx context.Context, profile *Profile) error

	// ListIDs возвращает ID всех профилей (для maintenance-джоб).
	ListIDs(ctx context.Context) ([]string, error)
}

// Cache определяет контракт кэширования профилей.
type Cache interface {
	// Get возвращает профиль из кэша или ошибку cache miss.
	Get(ctx context.Context, id string) (*Profile, error)

	// Set кладёт профиль в кэш с TTL.
	Set(ctx context.Context, profile *Profile, ttl time.Duration) error

	// Invalidate удаляет профиль из кэша.
	Invalidate(ctx context.Context, id string) error
}
