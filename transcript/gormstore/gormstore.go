// Package gormstore keeps transcripts in the service database, one row per
// clip with the segments serialized as JSON.
package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/kbukum/scribe/database"
	"github.com/kbukum/scribe/media"
	"github.com/kbukum/scribe/transcript"
)

type row struct {
	ClipID    string          `gorm:"primaryKey"`
	Segments  []media.Segment `gorm:"serializer:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (row) TableName() string { return "transcripts" }

// Store implements transcript.Repository on the transcripts table.
type Store struct {
	db *database.DB
}

// New creates a Store over db. The transcripts table comes from migrations.
func New(db *database.DB) *Store {
	return &Store{db: db}
}

// Save upserts the transcript for clipID.
func (s *Store) Save(ctx context.Context, clipID string, segments []media.Segment) error {
	now := time.Now().UTC()
	r := row{ClipID: clipID, Segments: segments, CreatedAt: now, UpdatedAt: now}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "clip_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"segments", "updated_at"}),
	}).Create(&r).Error
	if err != nil {
		return database.FromDatabase(err, "transcript")
	}
	return nil
}

// List returns the stored segments, or nil when none are stored.
func (s *Store) List(ctx context.Context, clipID string) ([]media.Segment, error) {
	var r row
	err := s.db.WithContext(ctx).Where("clip_id = ?", clipID).Limit(1).Find(&r).Error
	if err != nil {
		return nil, database.FromDatabase(err, "transcript")
	}
	if r.ClipID == "" {
		return nil, nil
	}
	media.SortByStart(r.Segments)
	return r.Segments, nil
}

// Delete removes the transcript and reports whether it existed.
func (s *Store) Delete(ctx context.Context, clipID string) (bool, error) {
	res := s.db.WithContext(ctx).Where("clip_id = ?", clipID).Delete(&row{})
	if res.Error != nil {
		return false, database.FromDatabase(res.Error, "transcript")
	}
	return res.RowsAffected > 0, nil
}

var _ transcript.Repository = (*Store)(nil)
