package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "taskmanager/internal/errors"
	"taskmanager/internal/model"
)

func boolPtr(b bool) *bool { return &b }

func TestTaskService_Create(t *testing.T) {
	ownerID := uuid.New()

	tests := []struct {
		name      string
		input     TaskInput
		setupMock func(*MockTaskRepository)
		wantErr   bool
	}{
		{
			name:  "owned by caller",
			input: TaskInput{Description: "  buy milk  "},
			setupMock: func(m *MockTaskRepository) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(task *model.Task) bool {
					return task.OwnerID == ownerID && task.Description == "buy milk" && !task.Completed
				})).Return(nil)
			},
		},
		{
			name:      "blank description",
			input:     TaskInput{Description: "   "},
			setupMock: func(m *MockTaskRepository) {},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			task, err := NewTaskService(mockRepo).Create(context.Background(), ownerID, tt.input)
			if tt.wantErr {
				var validationErr *apperrors.ValidationError
				assert.ErrorAs(t, err, &validationErr)
				assert.Nil(t, task)
				mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ownerID, task.OwnerID)
			assert.NotEqual(t, uuid.Nil, task.ID)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_ForeignTaskIsNotFound(t *testing.T) {
	taskID, caller := uuid.New(), uuid.New()

	mockRepo := new(MockTaskRepository)
	mockRepo.On("FindByIDAndOwner", mock.Anything, taskID, caller).Return(nil, gorm.ErrRecordNotFound)
	service := NewTaskService(mockRepo)

	_, err := service.Get(context.Background(), taskID, caller)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = service.Update(context.Background(), taskID, caller, TaskPatch{Completed: boolPtr(true)})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = service.Delete(context.Background(), taskID, caller)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "DeleteByIDAndOwner", mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskService_Update(t *testing.T) {
	taskID, ownerID := uuid.New(), uuid.New()
	stored := &model.Task{ID: taskID, OwnerID: ownerID, Description: "buy milk"}

	mockRepo := new(MockTaskRepository)
	mockRepo.On("FindByIDAndOwner", mock.Anything, taskID, ownerID).Return(stored, nil)
	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(task *model.Task) bool {
		return task.Completed && task.Description == "buy oat milk" && task.OwnerID == ownerID
	})).Return(nil)

	task, err := NewTaskService(mockRepo).Update(context.Background(), taskID, ownerID, TaskPatch{
		Description: strPtr("buy oat milk"),
		Completed:   boolPtr(true),
	})
	require.NoError(t, err)
	assert.True(t, task.Completed)
	mockRepo.AssertExpectations(t)
}

func TestTaskService_Update_BlankDescriptionChangesNothing(t *testing.T) {
	mockRepo := new(MockTaskRepository)

	_, err := NewTaskService(mockRepo).Update(context.Background(), uuid.New(), uuid.New(), TaskPatch{
		Description: strPtr(" "),
		Completed:   boolPtr(true),
	})

	var validationErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	mockRepo.AssertNotCalled(t, "FindByIDAndOwner", mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTaskService_Delete(t *testing.T) {
	taskID, ownerID := uuid.New(), uuid.New()
	stored := &model.Task{ID: taskID, OwnerID: ownerID, Description: "buy milk"}

	mockRepo := new(MockTaskRepository)
	mockRepo.On("FindByIDAndOwner", mock.Anything, taskID, ownerID).Return(stored, nil)
	mockRepo.On("DeleteByIDAndOwner", mock.Anything, taskID, ownerID).Return(nil)

	task, err := NewTaskService(mockRepo).Delete(context.Background(), taskID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, stored, task)
	mockRepo.AssertExpectations(t)
}

func TestTaskService_List(t *testing.T) {
	ownerID := uuid.New()
	query := model.TaskQuery{OwnerID: ownerID, Completed: boolPtr(true), SortField: "createdAt", SortDir: model.SortDesc}
	want := []model.Task{{ID: uuid.New(), OwnerID: ownerID, Completed: true}}

	mockRepo := new(MockTaskRepository)
	mockRepo.On("List", mock.Anything, query).Return(want, nil)

	tasks, err := NewTaskService(mockRepo).List(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, want, tasks)

	_, err = NewTaskService(mockRepo).List(context.Background(), model.TaskQuery{})
	assert.Error(t, err)
}

func TestTaskService_List_StoreError(t *testing.T) {
	storeErr := errors.New("timeout")
	mockRepo := new(MockTaskRepository)
	mockRepo.On("List", mock.Anything, mock.Anything).Return(nil, storeErr)

	_, err := NewTaskService(mockRepo).List(context.Background(), model.TaskQuery{OwnerID: uuid.New()})
	assert.ErrorIs(t, err, storeErr)
}
