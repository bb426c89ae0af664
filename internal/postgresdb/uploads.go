package postgresdb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	apperrors "resume-matcher/internal/errors"
	"resume-matcher/internal/models"
)

const uploadColumns = `id, user_id, storage_key, filename, content_type, status, error_message, resume_id, created_at, updated_at`

// CreateUpload inserts rec as pending and fills in its timestamps.
func (s *Store) CreateUpload(ctx context.Context, rec *models.UploadRecord) error {
	sql := `
		INSERT INTO resume_files (id, user_id, storage_key, filename, content_type, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
		`

	rec.Status = models.StatusPending
	err := s.Pool.QueryRow(ctx, sql,
		rec.ID,
		rec.OwnerID,
		rec.StorageKey,
		rec.Filename,
		rec.ContentType,
		rec.Status.String(),
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return apperrors.Persistence("insert upload", err)
	}
	return nil
}

func (s *Store) UploadByID(ctx context.Context, id uuid.UUID) (*models.UploadRecord, error) {
	sql := `SELECT ` + uploadColumns + ` FROM resume_files WHERE id = $1`

	rec, err := scanUpload(s.Pool.QueryRow(ctx, sql, id))
	if err != nil {
		return nil, notFoundOr(err, "upload not found", "select upload")
	}
	return rec, nil
}

// PendingUploads is a snapshot of the backlog, oldest first.
func (s *Store) PendingUploads(ctx context.Context) ([]models.UploadRecord, error) {
	sql := `SELECT ` + uploadColumns + ` FROM resume_files WHERE status = $1 ORDER BY created_at, id`

	return s.queryUploads(ctx, sql, models.StatusPending.String())
}

func (s *Store) UploadsByOwner(ctx context.Context, ownerID int64) ([]models.UploadRecord, error) {
	sql := `SELECT ` + uploadColumns + ` FROM resume_files WHERE user_id = $1 ORDER BY created_at DESC, id`

	return s.queryUploads(ctx, sql, ownerID)
}

// ClaimUpload moves a pending upload to processing. It reports false when
// the upload was no longer pending, e.g. because another worker took it.
func (s *Store) ClaimUpload(ctx context.Context, id uuid.UUID) (bool, error) {
	sql := `
		UPDATE resume_files
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
		`

	tag, err := s.Pool.Exec(ctx, sql, id, models.StatusProcessing.String(), models.StatusPending.String())
	if err != nil {
		return false, apperrors.Persistence("claim upload", err)
	}
	return tag.RowsAffected() == 1, nil
}

// FailUpload marks a processing upload as failed with reason.
func (s *Store) FailUpload(ctx context.Context, id uuid.UUID, reason string) error {
	sql := `
		UPDATE resume_files
		SET status = $2, error_message = $3, updated_at = now()
		WHERE id = $1 AND status = $4
		`

	tag, err := s.Pool.Exec(ctx, sql, id, models.StatusFailed.String(), reason, models.StatusProcessing.String())
	if err != nil {
		return apperrors.Persistence("fail upload", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Persistence("fail upload", fmt.Errorf("upload %s is not processing", id))
	}
	return nil
}

// FailStaleUploads marks uploads that have been processing since before
// cutoff as failed and returns how many were changed.
func (s *Store) FailStaleUploads(ctx context.Context, cutoff time.Time, reason string) (int64, error) {
	sql := `
		UPDATE resume_files
		SET status = $1, error_message = $2, updated_at = now()
		WHERE status = $3 AND updated_at < $4
		`

	tag, err := s.Pool.Exec(ctx, sql, models.StatusFailed.String(), reason, models.StatusProcessing.String(), cutoff)
	if err != nil {
		return 0, apperrors.Persistence("fail stale uploads", err)
	}
	return tag.RowsAffected(), nil
}

// CompleteUpload stores the resume of a processing upload and marks the
// upload parsed in one transaction. The storage key is cleared; removing
// the object itself is up to the caller.
func (s *Store) CompleteUpload(ctx context.Context, upload *models.UploadRecord, parsed *models.ParsedResume, embedding []float32) (*models.ResumeRecord, error) {
	var rec *models.ResumeRecord

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		rec, err = insertResume(ctx, tx, upload.OwnerID, parsed, embedding)
		if err != nil {
			return err
		}

		sql := `
			UPDATE resume_files
			SET status = $2, resume_id = $3, storage_key = '', error_message = NULL, updated_at = now()
			WHERE id = $1 AND status = $4
			`
		tag, err := tx.Exec(ctx, sql, upload.ID, models.StatusParsed.String(), rec.ID, models.StatusProcessing.String())
		if err != nil {
			return apperrors.Persistence("mark upload parsed", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.Persistence("mark upload parsed", fmt.Errorf("upload %s is not processing", upload.ID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) queryUploads(ctx context.Context, sql string, args ...any) ([]models.UploadRecord, error) {
	rows, err := s.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.Persistence("select uploads", err)
	}
	defer rows.Close()

	uploads := []models.UploadRecord{}
	for rows.Next() {
		rec, err := scanUpload(rows)
		if err != nil {
			return nil, apperrors.Persistence("scan upload", err)
		}
		uploads = append(uploads, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence("select uploads", err)
	}
	return uploads, nil
}

func scanUpload(row pgx.Row) (*models.UploadRecord, error) {
	var (
		rec          models.UploadRecord
		statusString string
	)

	err := row.Scan(
		&rec.ID,
		&rec.OwnerID,
		&rec.StorageKey,
		&rec.Filename,
		&rec.ContentType,
		&statusString,
		&rec.ErrorMessage,
		&rec.ResumeID,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	status, err := models.ParseStatus(statusString)
	if err != nil {
		return nil, fmt.Errorf("database contains invalid upload status: %w", err)
	}
	rec.Status = status

	return &rec, nil
}
