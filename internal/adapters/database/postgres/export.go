package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/Badsnus/qr-studio/internal/domain/entity"
)

// ExportStorage is the export journal.
type ExportStorage struct {
	db *gorm.DB
}

func NewExportStorage(db *gorm.DB) *ExportStorage {
	return &ExportStorage{
		db: db,
	}
}

func (s *ExportStorage) Create(ctx context.Context, record *entity.ExportRecord) (*entity.ExportRecord, error) {
	err := s.db.WithContext(ctx).Create(record).Error
	return record, err
}

// GetBySession returns the exports of a session, newest first.
func (s *ExportStorage) GetBySession(ctx context.Context, sessionID string, limit int) ([]entity.ExportRecord, error) {
	var records []entity.ExportRecord
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at desc").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (s *ExportStorage) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entity.ExportRecord{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
