package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
	"github.com/JihunKong/vacation-sub000/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE PROFILE COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// CreateProfileCommand contains the data to create a student profile.
type CreateProfileCommand struct {
	// OwnerID is the authenticated user the profile belongs to.
	OwnerID string

	// Nickname is the display name.
	Nickname string
}

// Validate validates the command.
func (c CreateProfileCommand) Validate() error {
	if c.OwnerID == "" {
		return errors.New("create_profile: owner_id is required")
	}
	if c.Nickname == "" {
		return errors.New("create_profile: nickname is required")
	}
	return nil
}

// CreateProfileHandler handles the CreateProfileCommand.
type CreateProfileHandler struct {
	studentRepo student.Repository
}

// NewCreateProfileHandler creates a new CreateProfileHandler.
func NewCreateProfileHandler(studentRepo student.Repository) *CreateProfileHandler {
	return &CreateProfileHandler{studentRepo: studentRepo}
}

// Handle executes the create profile command. One profile per owner.
func (h *CreateProfileHandler) Handle(ctx context.Context, cmd CreateProfileCommand) (*student.Profile, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrValidation, err)
	}

	if existing, err := h.studentRepo.GetByOwner(ctx, cmd.OwnerID); err == nil && existing != nil {
		return nil, fmt.Errorf("create_profile: %w", student.ErrProfileAlreadyExists)
	}

	profile, err := student.NewProfile(student.NewProfileParams{
		ID:       uuid.NewString(),
		OwnerID:  cmd.OwnerID,
		Nickname: cmd.Nickname,
	})
	if err != nil {
		return nil, fmt.Errorf("create_profile: %w", err)
	}

	if err := h.studentRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("create_profile: persist: %w", err)
	}
	return profile, nil
}
