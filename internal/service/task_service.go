package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "taskmanager/internal/errors"
	"taskmanager/internal/model"
	"taskmanager/internal/repository"
)

// TaskInput is the payload of a new task.
type TaskInput struct {
	Description string
	Completed   bool
}

// TaskPatch holds the task fields to change. Nil fields are left untouched.
type TaskPatch struct {
	Description *string
	Completed   *bool
}

// TaskService handles tasks on behalf of their owner. A task owned by
// someone else is reported as apperrors.ErrNotFound.
type TaskService interface {
	Create(ctx context.Context, ownerID uuid.UUID, in TaskInput) (*model.Task, error)
	List(ctx context.Context, query model.TaskQuery) ([]model.Task, error)
	Get(ctx context.Context, id, ownerID uuid.UUID) (*model.Task, error)
	Update(ctx context.Context, id, ownerID uuid.UUID, patch TaskPatch) (*model.Task, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) (*model.Task, error)
}

type taskService struct {
	repo repository.TaskRepository
}

// NewTaskService creates a new task service.
func NewTaskService(repo repository.TaskRepository) TaskService {
	return &taskService{repo: repo}
}

// Create stores a task owned by ownerID.
func (s *taskService) Create(ctx context.Context, ownerID uuid.UUID, in TaskInput) (*model.Task, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, apperrors.NewValidationError("description is required")
	}

	task := &model.Task{
		ID:          uuid.New(),
		Description: description,
		Completed:   in.Completed,
		OwnerID:     ownerID,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// List returns the owner's tasks matching query.
func (s *taskService) List(ctx context.Context, query model.TaskQuery) ([]model.Task, error) {
	if query.OwnerID == uuid.Nil {
		return nil, errors.New("list tasks: owner is required")
	}
	tasks, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Get returns one task of the owner.
func (s *taskService) Get(ctx context.Context, id, ownerID uuid.UUID) (*model.Task, error) {
	task, err := s.repo.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, translateNotFound(err, "find task")
	}
	return task, nil
}

// Update applies patch to one task of the owner.
func (s *taskService) Update(ctx context.Context, id, ownerID uuid.UUID, patch TaskPatch) (*model.Task, error) {
	var description string
	if patch.Description != nil {
		description = strings.TrimSpace(*patch.Description)
		if description == "" {
			return nil, apperrors.NewValidationError("description is required")
		}
	}

	task, err := s.repo.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, translateNotFound(err, "find task")
	}

	if patch.Description != nil {
		task.Description = description
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// Delete removes one task of the owner and returns it.
func (s *taskService) Delete(ctx context.Context, id, ownerID uuid.UUID) (*model.Task, error) {
	task, err := s.repo.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, translateNotFound(err, "find task")
	}
	if err := s.repo.DeleteByIDAndOwner(ctx, id, ownerID); err != nil {
		return nil, translateNotFound(err, "delete task")
	}
	return task, nil
}

func translateNotFound(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
