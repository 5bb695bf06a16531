package repository

import (
	"context"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskmanager/internal/model"
)

// sortColumns maps the sortable API field names to their columns.
var sortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"description": "description",
	"completed":   "completed",
}

// SortColumn resolves an API sort field to a column name.
func SortColumn(field string) (string, bool) {
	col, ok := sortColumns[field]
	return col, ok
}

// TaskRepository defines task persistence operations. Every read and write
// is filtered by owner.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Task, error)
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) error
	List(ctx context.Context, query model.TaskQuery) ([]model.Task, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// Create creates a new task.
func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// Update saves description and completion of an owned task.
func (r *taskRepository) Update(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Model(task).
		Where("owner_id = ?", task.OwnerID).
		Select("description", "completed", "updated_at").
		Updates(task).Error
}

// FindByIDAndOwner finds a task by ID that belongs to ownerID.
func (r *taskRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteByIDAndOwner removes a task owned by ownerID.
func (r *taskRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&model.Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns the owner's tasks filtered, sorted and paginated per query.
// Without a sort field tasks come back in creation order.
func (r *taskRepository) List(ctx context.Context, query model.TaskQuery) ([]model.Task, error) {
	tx := r.db.WithContext(ctx).Where("owner_id = ?", query.OwnerID)

	if query.Completed != nil {
		tx = tx.Where("completed = ?", *query.Completed)
	}

	if col, ok := SortColumn(query.SortField); ok {
		tx = tx.Order(clause.OrderByColumn{
			Column: clause.Column{Name: col},
			Desc:   query.SortDir == model.SortDesc,
		})
	} else {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}})
	}
	// Tasks created within the same millisecond tie on created_at.
	tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})

	switch {
	case query.Limit != nil:
		tx = tx.Limit(*query.Limit)
	case query.Skip != nil:
		// MySQL rejects OFFSET without LIMIT.
		tx = tx.Limit(math.MaxInt)
	}
	if query.Skip != nil {
		tx = tx.Offset(*query.Skip)
	}

	tasks := make([]model.Task, 0)
	if err := tx.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
