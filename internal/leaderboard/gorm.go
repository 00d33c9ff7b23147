package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// scoreRecord is the table row for an Entry.
type scoreRecord struct {
	ID                uint      `gorm:"primaryKey"`
	VisitorID         string    `gorm:"size:64;not null;uniqueIndex"`
	Nickname          string    `gorm:"size:80;not null"`
	SpeedRunTime      int64     `gorm:"not null;index"`
	CompletionPercent float64   `gorm:"not null"`
	SubmittedAt       time.Time `gorm:"not null"`
}

func (scoreRecord) TableName() string {
	return "leaderboard"
}

func (r scoreRecord) entry() Entry {
	return Entry{
		ID:                r.ID,
		VisitorID:         r.VisitorID,
		Nickname:          r.Nickname,
		SpeedRunTime:      r.SpeedRunTime,
		CompletionPercent: r.CompletionPercent,
		SubmittedAt:       r.SubmittedAt,
	}
}

// GormBoard is a Board persisted through gorm. The write and the rank count
// happen in one transaction.
type GormBoard struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormBoard migrates the leaderboard table and returns a board on db.
func NewGormBoard(db *gorm.DB) (*GormBoard, error) {
	if err := db.AutoMigrate(&scoreRecord{}); err != nil {
		return nil, fmt.Errorf("migrating leaderboard: %w", err)
	}
	return &GormBoard{db: db, now: time.Now}, nil
}

func (b *GormBoard) SubmitScore(ctx context.Context, s Submission) (Result, error) {
	if err := s.Validate(); err != nil {
		return rejected(err.Error()), nil
	}

	var res Result
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec scoreRecord
		err := tx.Where("visitor_id = ?", s.VisitorID).First(&rec).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			rec = scoreRecord{VisitorID: s.VisitorID}
		case err != nil:
			return fmt.Errorf("loading entry: %w", err)
		case rec.SpeedRunTime <= s.SpeedRunTime:
			res = notImproved(rec.SpeedRunTime)
			return nil
		}

		rec.Nickname = strings.TrimSpace(s.Nickname)
		rec.SpeedRunTime = s.SpeedRunTime
		rec.CompletionPercent = s.CompletionPercent
		rec.SubmittedAt = b.now()
		if err := tx.Save(&rec).Error; err != nil {
			return fmt.Errorf("saving entry: %w", err)
		}

		var faster int64
		err = tx.Model(&scoreRecord{}).
			Where("speed_run_time < ?", s.SpeedRunTime).
			Count(&faster).Error
		if err != nil {
			return fmt.Errorf("counting faster entries: %w", err)
		}

		res = accepted(int(faster) + 1)
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func (b *GormBoard) TopScores(ctx context.Context, limit int) ([]Entry, error) {
	var recs []scoreRecord
	err := b.db.WithContext(ctx).
		Order("speed_run_time ASC").
		Order("submitted_at ASC").
		Order("id ASC").
		Limit(normalizeLimit(limit)).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("listing top scores: %w", err)
	}

	out := make([]Entry, len(recs))
	for i, r := range recs {
		out[i] = r.entry()
	}
	return out, nil
}
