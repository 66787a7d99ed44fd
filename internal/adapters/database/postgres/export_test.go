package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Badsnus/qr-studio/internal/domain/entity"
)

func newStorageWithMock(t *testing.T) (*ExportStorage, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewExportStorage(db), mock
}

func TestExportStorageCreate(t *testing.T) {
	ctx := context.Background()
	insert := `INSERT INTO "export_records" .* RETURNING "id"`

	t.Run("returns generated id", func(t *testing.T) {
		s, mock := newStorageWithMock(t)
		mock.ExpectQuery(insert).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("3f0c7a52-6d8e-4b1e-9a36-1d2b0c4e5f60"))

		record, err := s.Create(ctx, &entity.ExportRecord{
			SessionID: "9b2e4c1d-7a3f-4e5b-8c6d-0f1a2b3c4d5e",
			FileName:  "qr_code",
			Format:    "png",
			Payload:   "https://example.com",
			Colors:    pq.StringArray{"#ffffff", "#000000"},
			Status:    entity.ExportStatusDone,
		})
		require.NoError(t, err)
		assert.Equal(t, "3f0c7a52-6d8e-4b1e-9a36-1d2b0c4e5f60", record.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		s, mock := newStorageWithMock(t)
		mock.ExpectQuery(insert).WillReturnError(errors.New("db down"))

		_, err := s.Create(ctx, &entity.ExportRecord{FileName: "qr_code", Status: entity.ExportStatusFailed})
		assert.ErrorContains(t, err, "db down")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestExportStorageGetBySession(t *testing.T) {
	s, mock := newStorageWithMock(t)
	sessionID := "9b2e4c1d-7a3f-4e5b-8c6d-0f1a2b3c4d5e"
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "created_at", "session_id", "file_name", "format", "status"}).
		AddRow("b", now, sessionID, "second", "jpeg", entity.ExportStatusFailed).
		AddRow("a", now.Add(-time.Minute), sessionID, "first", "png", entity.ExportStatusDone)
	mock.ExpectQuery(`SELECT \* FROM "export_records" WHERE session_id = \$1 ORDER BY created_at desc LIMIT`).
		WithArgs(sessionID, 5).
		WillReturnRows(rows)

	records, err := s.GetBySession(context.Background(), sessionID, 5)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "second", records[0].FileName)
	assert.Equal(t, entity.ExportStatusDone, records[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportStorageCountByStatus(t *testing.T) {
	s, mock := newStorageWithMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "export_records" WHERE status = $1`)).
		WithArgs(entity.ExportStatusFailed).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := s.CountByStatus(context.Background(), entity.ExportStatusFailed)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
