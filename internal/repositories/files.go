package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rohits-web03/stashbox/internal/models"
	"gorm.io/gorm"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *FileRepository) WithTx(tx *gorm.DB) *FileRepository {
	return &FileRepository{db: tx}
}

func (r *FileRepository) Create(ctx context.Context, f *models.File) error {
	return translate(r.db.WithContext(ctx).Create(f).Error)
}

func (r *FileRepository) GetByID(ctx context.Context, owner, id uuid.UUID) (*models.File, error) {
	var f models.File
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, owner).
		First(&f).Error
	if err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

// FirstByName returns the owner's oldest file with the given name.
func (r *FileRepository) FirstByName(ctx context.Context, owner uuid.UUID, name string) (*models.File, error) {
	var f models.File
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND filename = ?", owner, name).
		Order("created_time ASC").
		First(&f).Error
	if err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

func (r *FileRepository) ListByOwner(ctx context.Context, owner uuid.UUID) ([]models.File, error) {
	files := make([]models.File, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("created_time ASC").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

// SumSizeByOwner returns the total bytes recorded for the owner.
func (r *FileRepository) SumSizeByOwner(ctx context.Context, owner uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.File{}).
		Where("user_id = ?", owner).
		Select("COALESCE(SUM(file_size), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// UpdateName changes only the filename and modified time of the record.
func (r *FileRepository) UpdateName(ctx context.Context, f *models.File, name string, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.File{}).
		Where("id = ? AND user_id = ?", f.ID, f.UserID).
		Updates(map[string]any{"filename": name, "modified_time": now})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	f.Filename = name
	f.ModifiedTime = now
	return nil
}
