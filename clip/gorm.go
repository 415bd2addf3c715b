package clip

import (
	"context"

	"github.com/kbukum/scribe/database"
	apperrors "github.com/kbukum/scribe/errors"
)

// GormRepository stores clip metadata in the audio_clips table.
type GormRepository struct {
	db *database.DB
}

// NewGormRepository creates a repository over db.
func NewGormRepository(db *database.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Save(ctx context.Context, rec *Record) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return database.FromDatabase(err, "audio clip")
	}
	return nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		if database.IsNotFoundError(err) {
			return nil, apperrors.ClipNotFound(id)
		}
		return nil, database.FromDatabase(err, "audio clip")
	}
	return &rec, nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Record{})
	if res.Error != nil {
		return false, database.FromDatabase(res.Error, "audio clip")
	}
	return res.RowsAffected > 0, nil
}

var _ Repository = (*GormRepository)(nil)
