package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/imagestore/internal/domain"
)

const metadataColumns = `
	id, image_group, name, mime_type, image_type, file_extension,
	size_bytes, width, height, md5_hash, date_added_utc, tags, thumbnails
`

type metadataRepository struct {
	db       *dbpg.DB
	strategy retry.Strategy
}

func NewMetadataRepository(db *dbpg.DB, strategy retry.Strategy) domain.MetadataRepository {
	return &metadataRepository{
		db:       db,
		strategy: strategy,
	}
}

// Upsert writes the full record, last writer wins. The same statement
// serves the initial insert on upload and the thumbnail append later.
func (r *metadataRepository) Upsert(ctx context.Context, m *domain.ImageMetadata) error {
	query := `
		INSERT INTO images (` + metadataColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			image_group = EXCLUDED.image_group,
			name = EXCLUDED.name,
			mime_type = EXCLUDED.mime_type,
			image_type = EXCLUDED.image_type,
			file_extension = EXCLUDED.file_extension,
			size_bytes = EXCLUDED.size_bytes,
			width = EXCLUDED.width,
			height = EXCLUDED.height,
			md5_hash = EXCLUDED.md5_hash,
			date_added_utc = EXCLUDED.date_added_utc,
			tags = EXCLUDED.tags,
			thumbnails = EXCLUDED.thumbnails
	`

	_, err := r.db.ExecWithRetry(ctx, r.strategy, query,
		m.ID,
		m.ImageGroup,
		m.Name,
		m.MimeType,
		m.ImageType,
		m.FileExtension,
		m.SizeBytes,
		m.Width,
		m.Height,
		m.MD5Hash,
		m.DateAddedUTC,
		m.Tags,
		m.Thumbnails,
	)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("image_id", m.ID).Msg("failed to upsert metadata")
		return fmt.Errorf("upsert metadata: %w", err)
	}
	return nil
}

func (r *metadataRepository) GetByID(ctx context.Context, id, group string) (*domain.ImageMetadata, error) {
	query := `SELECT ` + metadataColumns + ` FROM images WHERE id = $1`
	args := []any{id}
	if group != "" {
		query += ` AND image_group = $2`
		args = append(args, group)
	}

	rows, err := r.db.QueryWithRetry(ctx, r.strategy, query, args...)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("image_id", id).Msg("failed to query metadata")
		return nil, fmt.Errorf("get metadata: %w", err)
	}
	defer rows.Close()

	metas, err := r.scanMetadata(rows)
	if err != nil {
		return nil, err
	}
	if len(metas) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrImageNotFound, id)
	}
	return metas[0], nil
}

// GetByIDs loads the records that exist; unknown ids are simply absent
// from the result.
func (r *metadataRepository) GetByIDs(ctx context.Context, ids []string, group string) ([]*domain.ImageMetadata, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+1)
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args = append(args, id)
	}

	query := `SELECT ` + metadataColumns + ` FROM images WHERE id IN (` + strings.Join(placeholders, ", ") + `)`
	if group != "" {
		query += fmt.Sprintf(` AND image_group = $%d`, len(ids)+1)
		args = append(args, group)
	}
	query += ` ORDER BY date_added_utc`

	rows, err := r.db.QueryWithRetry(ctx, r.strategy, query, args...)
	if err != nil {
		zlog.Logger.Error().Err(err).Int("ids", len(ids)).Msg("failed to query metadata batch")
		return nil, fmt.Errorf("get metadata batch: %w", err)
	}
	defer rows.Close()

	return r.scanMetadata(rows)
}

func (r *metadataRepository) Remove(ctx context.Context, id, group string) (bool, error) {
	query := `DELETE FROM images WHERE id = $1`
	args := []any{id}
	if group != "" {
		query += ` AND image_group = $2`
		args = append(args, group)
	}

	result, err := r.db.ExecWithRetry(ctx, r.strategy, query, args...)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("image_id", id).Msg("failed to delete metadata")
		return false, fmt.Errorf("delete metadata: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *metadataRepository) scanMetadata(rows *sql.Rows) ([]*domain.ImageMetadata, error) {
	var metas []*domain.ImageMetadata

	for rows.Next() {
		var m domain.ImageMetadata
		err := rows.Scan(
			&m.ID,
			&m.ImageGroup,
			&m.Name,
			&m.MimeType,
			&m.ImageType,
			&m.FileExtension,
			&m.SizeBytes,
			&m.Width,
			&m.Height,
			&m.MD5Hash,
			&m.DateAddedUTC,
			&m.Tags,
			&m.Thumbnails,
		)
		if err != nil {
			return nil, fmt.Errorf("scan metadata: %w", err)
		}
		metas = append(metas, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return metas, nil
}
