package task

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskvault/backend/domain"
	"github.com/taskvault/backend/internal/auth"
	appLogger "github.com/taskvault/backend/pkg/logger"
	"github.com/taskvault/backend/repository"
)

const (
	titleMaxLen       = 200
	descriptionMaxLen = 1000
)

// UseCase implements the ownership-enforced task lifecycle. Every
// operation authorizes the caller against the target owner before any
// store access; a denial is indistinguishable from a missing resource
// once it crosses the transport boundary.
type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
	}
}

// CreateInput carries the payload for task creation.
type CreateInput struct {
	Title       string
	Description string
}

// UpdateInput carries a partial update. Nil fields are left untouched.
type UpdateInput struct {
	Title       *string
	Description *string
}

func (uc *UseCase) List(ctx context.Context, caller *auth.Identity, owner uuid.UUID, completed *bool) ([]domain.Task, error) {
	if err := auth.Authorize(caller, owner); err != nil {
		return nil, err
	}
	tasks, err := uc.tasks.List(ctx, repository.TaskFilter{OwnerID: owner, Completed: completed})
	if err != nil {
		return nil, uc.storeError(ctx, err)
	}
	return tasks, nil
}

func (uc *UseCase) Create(ctx context.Context, caller *auth.Identity, owner uuid.UUID, in CreateInput) (*domain.Task, error) {
	if err := auth.Authorize(caller, owner); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.NewError(domain.ErrCodeValidation, "title must not be empty")
	}
	if utf8.RuneCountInString(title) > titleMaxLen {
		return nil, domain.NewError(domain.ErrCodeValidation, "title too long")
	}
	description := strings.TrimSpace(in.Description)
	if utf8.RuneCountInString(description) > descriptionMaxLen {
		return nil, domain.NewError(domain.ErrCodeValidation, "description too long")
	}

	created, err := uc.tasks.Create(ctx, &domain.Task{
		OwnerID:     owner,
		Title:       title,
		Description: description,
	})
	if err != nil {
		return nil, uc.storeError(ctx, err)
	}
	return created, nil
}

func (uc *UseCase) Get(ctx context.Context, caller *auth.Identity, owner, id uuid.UUID) (*domain.Task, error) {
	if err := auth.Authorize(caller, owner); err != nil {
		return nil, err
	}
	task, err := uc.tasks.GetByID(ctx, owner, id)
	if err != nil {
		return nil, uc.storeError(ctx, err)
	}
	return task, nil
}

func (uc *UseCase) Update(ctx context.Context, caller *auth.Identity, owner, id uuid.UUID, in UpdateInput) (*domain.Task, error) {
	if err := auth.Authorize(caller, owner); err != nil {
		return nil, err
	}

	// Existence is checked before payload validation so a bad update to
	// a missing task reports NOT_FOUND, not VALIDATION_ERROR.
	if _, err := uc.tasks.GetByID(ctx, owner, id); err != nil {
		return nil, uc.storeError(ctx, err)
	}

	patch := repository.TaskPatch{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, domain.NewError(domain.ErrCodeValidation, "title must not be empty")
		}
		if utf8.RuneCountInString(title) > titleMaxLen {
			return nil, domain.NewError(domain.ErrCodeValidation, "title too long")
		}
		patch.Title = &title
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if utf8.RuneCountInString(description) > descriptionMaxLen {
			return nil, domain.NewError(domain.ErrCodeValidation, "description too long")
		}
		patch.Description = &description
	}

	updated, err := uc.tasks.Update(ctx, owner, id, patch)
	if err != nil {
		return nil, uc.storeError(ctx, err)
	}
	return updated, nil
}

func (uc *UseCase) Delete(ctx context.Context, caller *auth.Identity, owner, id uuid.UUID) error {
	if err := auth.Authorize(caller, owner); err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, owner, id); err != nil {
		return uc.storeError(ctx, err)
	}
	return nil
}

func (uc *UseCase) ToggleComplete(ctx context.Context, caller *auth.Identity, owner, id uuid.UUID) (*domain.Task, error) {
	if err := auth.Authorize(caller, owner); err != nil {
		return nil, err
	}
	task, err := uc.tasks.ToggleComplete(ctx, owner, id)
	if err != nil {
		return nil, uc.storeError(ctx, err)
	}
	return task, nil
}

// storeError passes domain classifications through and converts
// anything else into STORE_UNAVAILABLE. Infrastructure failures are
// never retried here and never leak internal detail to the caller.
func (uc *UseCase) storeError(ctx context.Context, err error) error {
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return err
	}
	appLogger.WithRequestID(ctx, uc.logger).Error("task store failure", zap.Error(err))
	return domain.WrapError(domain.ErrCodeUnavailable, "storage unavailable", err)
}
