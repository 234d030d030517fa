// Package kv provides database operations for named serialized values.
//
// # Usage
//
//	repo := kv.NewRepository(db)
//	value, ok, err := repo.Get("isbnList")
package kv

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/shelf/internal/entities"
)

// Repository handles all stored value operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new stored value repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the value stored under key. ok is false when the key is absent.
func (r *Repository) Get(key string) (value string, ok bool, err error) {
	var stored entities.StoredValue
	err = r.db.Where("key = ?", key).First(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return stored.Value, true, nil
}

// Set creates or overwrites the value stored under key.
func (r *Repository) Set(key, value string) error {
	stored := entities.StoredValue{Key: key, Value: value}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&stored).Error
}

// SetMany writes several values in one transaction.
func (r *Repository) SetMany(values map[string]string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		for key, value := range values {
			if err := repo.Set(key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// WithContext returns a repository whose queries run under ctx.
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}
