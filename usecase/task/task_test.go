package task_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskvault/backend/domain"
	"github.com/taskvault/backend/internal/auth"
	"github.com/taskvault/backend/repository"
	taskUC "github.com/taskvault/backend/usecase/task"
)

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) GetByID(ctx context.Context, owner, id uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *MockTaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	args := m.Called(ctx, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, owner, id uuid.UUID, patch repository.TaskPatch) (*domain.Task, error) {
	args := m.Called(ctx, owner, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, owner, id uuid.UUID) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

func (m *MockTaskRepository) ToggleComplete(ctx context.Context, owner, id uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

var _ repository.TaskRepository = (*MockTaskRepository)(nil)

func identityFor(id uuid.UUID) *auth.Identity {
	return &auth.Identity{UserID: id}
}

func TestUseCase_OwnershipGating(t *testing.T) {
	owner := uuid.New()
	stranger := identityFor(uuid.New())
	taskID := uuid.New()
	ctx := context.Background()

	// Every operation invoked by a non-owner must fail before the store
	// is touched.
	tests := []struct {
		name string
		call func(uc *taskUC.UseCase) error
	}{
		{
			name: "list",
			call: func(uc *taskUC.UseCase) error {
				_, err := uc.List(ctx, stranger, owner, nil)
				return err
			},
		},
		{
			name: "create",
			call: func(uc *taskUC.UseCase) error {
				_, err := uc.Create(ctx, stranger, owner, taskUC.CreateInput{Title: "Buy milk"})
				return err
			},
		},
		{
			name: "get",
			call: func(uc *taskUC.UseCase) error {
				_, err := uc.Get(ctx, stranger, owner, taskID)
				return err
			},
		},
		{
			name: "update",
			call: func(uc *taskUC.UseCase) error {
				title := "New title"
				_, err := uc.Update(ctx, stranger, owner, taskID, taskUC.UpdateInput{Title: &title})
				return err
			},
		},
		{
			name: "delete",
			call: func(uc *taskUC.UseCase) error {
				return uc.Delete(ctx, stranger, owner, taskID)
			},
		},
		{
			name: "toggle",
			call: func(uc *taskUC.UseCase) error {
				_, err := uc.ToggleComplete(ctx, stranger, owner, taskID)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			uc := taskUC.New(mockRepo, nil)

			err := tt.call(uc)

			assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
			mockRepo.AssertExpectations(t)
			mockRepo.AssertNotCalled(t, "GetByID")
			mockRepo.AssertNotCalled(t, "List")
			mockRepo.AssertNotCalled(t, "Create")
			mockRepo.AssertNotCalled(t, "Update")
			mockRepo.AssertNotCalled(t, "Delete")
			mockRepo.AssertNotCalled(t, "ToggleComplete")
		})
	}
}

func TestUseCase_CreateValidation(t *testing.T) {
	owner := uuid.New()
	caller := identityFor(owner)
	ctx := context.Background()

	tests := []struct {
		name  string
		title string
	}{
		{name: "empty title", title: ""},
		{name: "whitespace title", title: "   \t  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			uc := taskUC.New(mockRepo, nil)

			_, err := uc.Create(ctx, caller, owner, taskUC.CreateInput{Title: tt.title})

			assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidation))
			mockRepo.AssertNotCalled(t, "Create")
		})
	}
}

func TestUseCase_CreateTrimsFields(t *testing.T) {
	owner := uuid.New()
	caller := identityFor(owner)
	ctx := context.Background()

	mockRepo := new(MockTaskRepository)
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(task *domain.Task) bool {
		return task.Title == "Buy milk" && task.Description == "2 liters" && task.OwnerID == owner
	})).Return(&domain.Task{ID: uuid.New(), OwnerID: owner, Title: "Buy milk", Description: "2 liters"}, nil)

	uc := taskUC.New(mockRepo, nil)
	created, err := uc.Create(ctx, caller, owner, taskUC.CreateInput{
		Title:       "  Buy milk  ",
		Description: " 2 liters ",
	})

	require.NoError(t, err)
	assert.Equal(t, owner, created.OwnerID)
	assert.False(t, created.Completed)
	mockRepo.AssertExpectations(t)
}

func TestUseCase_UpdateChecksExistenceBeforeValidation(t *testing.T) {
	owner := uuid.New()
	caller := identityFor(owner)
	taskID := uuid.New()
	ctx := context.Background()

	mockRepo := new(MockTaskRepository)
	mockRepo.On("GetByID", mock.Anything, owner, taskID).Return(nil, domain.ErrTaskNotFound)

	uc := taskUC.New(mockRepo, nil)

	// Invalid payload against a missing task reports NOT_FOUND, not a
	// validation failure.
	empty := ""
	_, err := uc.Update(ctx, caller, owner, taskID, taskUC.UpdateInput{Title: &empty})

	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
	mockRepo.AssertNotCalled(t, "Update")
}

func TestUseCase_UpdateRejectsEmptyTitle(t *testing.T) {
	owner := uuid.New()
	caller := identityFor(owner)
	taskID := uuid.New()
	ctx := context.Background()

	existing := &domain.Task{ID: taskID, OwnerID: owner, Title: "Buy milk"}

	mockRepo := new(MockTaskRepository)
	mockRepo.On("GetByID", mock.Anything, owner, taskID).Return(existing, nil)

	uc := taskUC.New(mockRepo, nil)

	empty := "   "
	_, err := uc.Update(ctx, caller, owner, taskID, taskUC.UpdateInput{Title: &empty})

	assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidation))
	mockRepo.AssertNotCalled(t, "Update")
}

func TestUseCase_UpdatePartial(t *testing.T) {
	owner := uuid.New()
	caller := identityFor(owner)
	taskID := uuid.New()
	ctx := context.Background()

	existing := &domain.Task{ID: taskID, OwnerID: owner, Title: "Buy milk"}

	mockRepo := new(MockTaskRepository)
	mockRepo.On("GetByID", mock.Anything, owner, taskID).Return(existing, nil)
	mockRepo.On("Update", mock.Anything, owner, taskID, mock.MatchedBy(func(patch repository.TaskPatch) bool {
		return patch.Title == nil && patch.Description != nil && *patch.Description == "whole"
	})).Return(&domain.Task{ID: taskID, OwnerID: owner, Title: "Buy milk", Description: "whole"}, nil)

	uc := taskUC.New(mockRepo, nil)

	description := " whole "
	updated, err := uc.Update(ctx, caller, owner, taskID, taskUC.UpdateInput{Description: &description})

	require.NoError(t, err)
	assert.Equal(t, "Buy milk", updated.Title)
	assert.Equal(t, owner, updated.OwnerID)
	mockRepo.AssertExpectations(t)
}

func TestUseCase_DeleteNotFoundIsSurfaced(t *testing.T) {
	owner := uuid.New()
	caller := identityFor(owner)
	taskID := uuid.New()
	ctx := context.Background()

	mockRepo := new(MockTaskRepository)
	mockRepo.On("Delete", mock.Anything, owner, taskID).Return(domain.ErrTaskNotFound)

	uc := taskUC.New(mockRepo, nil)
	err := uc.Delete(ctx, caller, owner, taskID)

	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestUseCase_StoreFailureIsClassified(t *testing.T) {
	owner := uuid.New()
	caller := identityFor(owner)
	ctx := context.Background()

	mockRepo := new(MockTaskRepository)
	mockRepo.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	uc := taskUC.New(mockRepo, nil)
	_, err := uc.List(ctx, caller, owner, nil)

	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnavailable))
	// The surfaced message carries no internal detail.
	var dErr *domain.Error
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, "storage unavailable", dErr.Message)
}

func TestUseCase_ListFilterPassthrough(t *testing.T) {
	owner := uuid.New()
	caller := identityFor(owner)
	ctx := context.Background()

	completed := true
	mockRepo := new(MockTaskRepository)
	mockRepo.On("List", mock.Anything, mock.MatchedBy(func(filter repository.TaskFilter) bool {
		return filter.OwnerID == owner && filter.Completed != nil && *filter.Completed
	})).Return([]domain.Task{}, nil)

	uc := taskUC.New(mockRepo, nil)
	tasks, err := uc.List(ctx, caller, owner, &completed)

	require.NoError(t, err)
	assert.Empty(t, tasks)
	mockRepo.AssertExpectations(t)
}
