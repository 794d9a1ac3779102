package achievement

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES (Dependency Inversion)
// ══════════════════════════════════════════════════════════════════════════════

// Repository defines the persistence contract for the achievement catalog
// and per-student progress.
type Repository interface {
	// UpsertDefinition syncs one catalog entry into the store.
	UpsertDefinition(ctx context.Context, def Definition) error

	// ListActive returns the currently offered definitions (base + the
	// active monthly set).
	ListActive(ctx context.Context) ([]Definition, error)

	// SetMonthlyActive activates the given monthly codes for a month key
	// ("YYYY-MM") and deactivates every other monthly entry.
	SetMonthlyActive(ctx context.Context, codes []string, monthKey string) error

	// GetProgress returns one progress row, or shared.ErrNotFound.
	GetProgress(ctx context.Context, studentID, code string) (*Progress, error)

	// ListProgress returns all progress rows for a student.
	ListProgress(ctx context.Context, studentID string) ([]*Progress, error)

	// SaveProgress upserts a progress row.
	SaveProgress(ctx context.Context, p *Progress) error

	// DeleteProgressForStudent removes every progress row for a student.
	DeleteProgressForStudent(ctx context.Context, studentID string) error

	// AppendHistory archives a completed achievement before rotation.
	AppendHistory(ctx context.Context, entry HistoryEntry) error

	// ListHistory returns a student's archived completions, newest first.
	ListHistory(ctx context.Context, studentID string) ([]HistoryEntry, error)

	// LastRotatedMonth returns the rotation marker ("YYYY-MM", empty if never).
	LastRotatedMonth(ctx context.Context) (string, error)

	// SetLastRotatedMonth persists the rotation marker.
	SetLastRotatedMonth(ctx context.Context, monthKey string) error
}
