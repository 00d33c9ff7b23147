package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type progressRecord struct {
	VisitorID        string                      `gorm:"primaryKey;size:64"`
	Collectibles     datatypes.JSONSlice[string] `gorm:"not null"`
	Achievements     datatypes.JSONSlice[string] `gorm:"not null"`
	VisitedBuildings datatypes.JSONSlice[string] `gorm:"not null"`
	UpdatedAt        time.Time
}

func (progressRecord) TableName() string {
	return "visitor_progress"
}

func (r progressRecord) progress() Progress {
	return Progress{
		VisitorID:        r.VisitorID,
		Collectibles:     []string(r.Collectibles),
		Achievements:     []string(r.Achievements),
		VisitedBuildings: []string(r.VisitedBuildings),
		UpdatedAt:        r.UpdatedAt,
	}
}

func record(p Progress) progressRecord {
	return progressRecord{
		VisitorID:        p.VisitorID,
		Collectibles:     datatypes.JSONSlice[string](nonNil(p.Collectibles)),
		Achievements:     datatypes.JSONSlice[string](nonNil(p.Achievements)),
		VisitedBuildings: datatypes.JSONSlice[string](nonNil(p.VisitedBuildings)),
		UpdatedAt:        p.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// GormStore is a Store persisted through gorm. Each save reads, merges and
// writes inside one transaction.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore migrates the progress table and returns a store on db.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&progressRecord{}); err != nil {
		return nil, fmt.Errorf("migrating progress: %w", err)
	}
	return &GormStore{db: db, now: time.Now}, nil
}

func (s *GormStore) Load(ctx context.Context, visitorID string) (Progress, error) {
	if visitorID == "" {
		return Progress{}, ErrNoVisitor
	}

	var rec progressRecord
	err := s.db.WithContext(ctx).Where("visitor_id = ?", visitorID).First(&rec).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return New(visitorID), nil
	case err != nil:
		return Progress{}, fmt.Errorf("loading progress: %w", err)
	}
	return Merge(rec.progress(), Progress{}), nil
}

func (s *GormStore) Save(ctx context.Context, p Progress) (Progress, error) {
	if p.VisitorID == "" {
		return Progress{}, ErrNoVisitor
	}

	var merged Progress
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec progressRecord
		err := tx.Where("visitor_id = ?", p.VisitorID).First(&rec).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("loading progress: %w", err)
		}

		merged = Merge(rec.progress(), p)
		merged.VisitorID = p.VisitorID
		merged.UpdatedAt = s.now()

		rec = record(merged)
		if err := tx.Save(&rec).Error; err != nil {
			return fmt.Errorf("saving progress: %w", err)
		}
		return nil
	})
	if err != nil {
		return Progress{}, err
	}
	return merged, nil
}
