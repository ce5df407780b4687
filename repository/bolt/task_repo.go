package bolt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/taskvault/backend/domain"
	"github.com/taskvault/backend/repository"
)

var rootBucket = []byte("tasks")

// TaskRepository is an embedded BoltDB implementation of the task store
// for single-node deployments and tests. Tasks live in one nested
// bucket per owner, so cross-owner reads are impossible by
// construction. Bolt serializes write transactions, which makes Update
// and ToggleComplete atomic read-modify-writes.
type TaskRepository struct {
	db *bolt.DB
}

// Open initializes the Bolt file and ensures the root bucket exists.
func Open(path string) (*TaskRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rootBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &TaskRepository{db: db}, nil
}

// Close closes the underlying Bolt database.
func (r *TaskRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Ping verifies the database file is open and the root bucket exists.
func (r *TaskRepository) Ping() error {
	return r.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(rootBucket) == nil {
			return errors.New("root bucket missing")
		}
		return nil
	})
}

func (r *TaskRepository) GetByID(ctx context.Context, owner, id uuid.UUID) (*domain.Task, error) {
	var task *domain.Task
	err := r.db.View(func(tx *bolt.Tx) error {
		found, err := getTask(tx, owner, id)
		if err != nil {
			return err
		}
		task = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *TaskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	tasks := []domain.Task{}
	err := r.db.View(func(tx *bolt.Tx) error {
		b := ownerBucket(tx, filter.OwnerID)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var task domain.Task
			if err := json.Unmarshal(v, &task); err != nil {
				return err
			}
			if filter.Completed != nil && task.Completed != *filter.Completed {
				return nil
			}
			tasks = append(tasks, task)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// Newest first, id as a total tie-break for equal timestamps.
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return bytes.Compare(tasks[i].ID[:], tasks[j].ID[:]) < 0
	})
	return tasks, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.NewError(domain.ErrCodeValidation, "nil task")
	}
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	now := time.Now().UTC()
	task.Completed = false
	task.CreatedAt = now
	task.UpdatedAt = now

	err := r.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.Bucket(rootBucket).CreateBucketIfNotExists(task.OwnerID[:])
		if err != nil {
			return err
		}
		return putTask(b, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *TaskRepository) Update(ctx context.Context, owner, id uuid.UUID, patch repository.TaskPatch) (*domain.Task, error) {
	var task *domain.Task
	err := r.db.Update(func(tx *bolt.Tx) error {
		found, err := getTask(tx, owner, id)
		if err != nil {
			return err
		}
		if patch.Title != nil {
			found.Title = *patch.Title
		}
		if patch.Description != nil {
			found.Description = *patch.Description
		}
		found.UpdatedAt = time.Now().UTC()
		if err := putTask(ownerBucket(tx, owner), found); err != nil {
			return err
		}
		task = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *TaskRepository) Delete(ctx context.Context, owner, id uuid.UUID) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := ownerBucket(tx, owner)
		if b == nil || b.Get(id[:]) == nil {
			return domain.ErrTaskNotFound
		}
		return b.Delete(id[:])
	})
}

func (r *TaskRepository) ToggleComplete(ctx context.Context, owner, id uuid.UUID) (*domain.Task, error) {
	var task *domain.Task
	err := r.db.Update(func(tx *bolt.Tx) error {
		found, err := getTask(tx, owner, id)
		if err != nil {
			return err
		}
		found.Completed = !found.Completed
		found.UpdatedAt = time.Now().UTC()
		if err := putTask(ownerBucket(tx, owner), found); err != nil {
			return err
		}
		task = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func ownerBucket(tx *bolt.Tx, owner uuid.UUID) *bolt.Bucket {
	return tx.Bucket(rootBucket).Bucket(owner[:])
}

func getTask(tx *bolt.Tx, owner, id uuid.UUID) (*domain.Task, error) {
	b := ownerBucket(tx, owner)
	if b == nil {
		return nil, domain.ErrTaskNotFound
	}
	raw := b.Get(id[:])
	if raw == nil {
		return nil, domain.ErrTaskNotFound
	}
	var task domain.Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func putTask(b *bolt.Bucket, task *domain.Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return b.Put(task.ID[:], payload)
}
