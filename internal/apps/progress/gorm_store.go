package progress

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps records in the user_progress table for online mode.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Find(ctx context.Context, userID string) (*UserProgress, error) {
	var rec ProgressRecord
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find progress: %w", err)
	}
	return rec.toProgress(), nil
}

// Mutate holds a row lock for the duration of fn so concurrent writers serialize.
func (s *GormStore) Mutate(ctx context.Context, userID string, fn MutateFunc) (*UserProgress, error) {
	var saved *UserProgress
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec ProgressRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load progress: %w", err)
		}

		p := rec.toProgress()
		if err := fn(p); err != nil {
			return err
		}

		rec.apply(p)
		if err := tx.Save(&rec).Error; err != nil {
			return fmt.Errorf("failed to save progress: %w", err)
		}
		saved = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *GormStore) Create(ctx context.Context, userID string) error {
	rec := newRecord(NewUserProgress(userID))
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to create progress: %w", err)
	}
	return nil
}
