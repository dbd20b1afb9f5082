package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kibrisacil/classifieds/gallery/domain"
	"github.com/kibrisacil/classifieds/shared/db"
)

var _ domain.ImageRepository = (*SQLiteImageRepository)(nil)

// SQLiteImageRepository implements domain.ImageRepository using SQL database (SQLite).
// One table backs the galleries of every listing type; rows are keyed by
// (listing_kind, listing_id) so offers, properties and cars share the same
// cover bookkeeping.
type SQLiteImageRepository struct {
	db *sql.DB
}

// NewImageRepository creates a new SQLiteImageRepository from a standard sql.DB
func NewImageRepository(sqlDB *sql.DB) *SQLiteImageRepository {
	return &SQLiteImageRepository{
		db: sqlDB,
	}
}

// InTransaction runs fn inside a transaction, joining an ambient one if the
// context already carries it.
func (r *SQLiteImageRepository) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.RunInTransaction(ctx, r.db, fn)
}

const listImagesQuery = `
	SELECT id, listing_kind, listing_id, object_key, is_cover, is_active, uploaded_at
	FROM listing_images
	WHERE listing_kind = ? AND listing_id = ?
	ORDER BY uploaded_at ASC, id ASC
`

// ListImages returns a listing's images ordered oldest-first
func (r *SQLiteImageRepository) ListImages(ctx context.Context, ref domain.ListingRef) ([]*domain.Image, error) {
	executor := db.GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, listImagesQuery, ref.Kind, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	images := make([]*domain.Image, 0)
	for rows.Next() {
		var row imageRow
		err := rows.Scan(
			&row.ID,
			&row.ListingKind,
			&row.ListingID,
			&row.ObjectKey,
			&row.IsCover,
			&row.IsActive,
			&row.UploadedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image row: %w", err)
		}
		images = append(images, row.toDomain())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating image rows: %w", err)
	}

	return images, nil
}

const getImageQuery = `
	SELECT id, listing_kind, listing_id, object_key, is_cover, is_active, uploaded_at
	FROM listing_images
	WHERE id = ? AND listing_kind = ? AND listing_id = ?
`

// GetImage retrieves a single image, scoped to its owning listing.
// An imageID belonging to a different listing is reported as not found.
func (r *SQLiteImageRepository) GetImage(ctx context.Context, ref domain.ListingRef, imageID int64) (*domain.Image, error) {
	executor := db.GetExecutor(ctx, r.db)

	var row imageRow
	err := executor.QueryRowContext(ctx, getImageQuery, imageID, ref.Kind, ref.ID).Scan(
		&row.ID,
		&row.ListingKind,
		&row.ListingID,
		&row.ObjectKey,
		&row.IsCover,
		&row.IsActive,
		&row.UploadedAt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrImageNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}

	return row.toDomain(), nil
}

const hasCoverQuery = `
	SELECT EXISTS(
		SELECT 1 FROM listing_images
		WHERE listing_kind = ? AND listing_id = ? AND is_cover = 1
	)
`

// HasCover reports whether the listing currently has a cover image
func (r *SQLiteImageRepository) HasCover(ctx context.Context, ref domain.ListingRef) (bool, error) {
	executor := db.GetExecutor(ctx, r.db)

	var exists bool
	err := executor.QueryRowContext(ctx, hasCoverQuery, ref.Kind, ref.ID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check cover existence: %w", err)
	}

	return exists, nil
}

const insertImageQuery = `
	INSERT INTO listing_images (listing_kind, listing_id, object_key, is_cover, is_active, uploaded_at)
	VALUES (?, ?, ?, ?, ?, ?)
`

// InsertImage persists a new image row and fills in its generated ID
func (r *SQLiteImageRepository) InsertImage(ctx context.Context, img *domain.Image) error {
	if img == nil {
		return fmt.Errorf("image cannot be nil")
	}

	if img.ObjectKey == "" {
		return fmt.Errorf("image object key cannot be empty")
	}

	executor := db.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, insertImageQuery,
		img.Listing.Kind,
		img.Listing.ID,
		img.ObjectKey,
		img.IsCover,
		img.IsActive,
		img.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert image: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted image id: %w", err)
	}
	img.ID = id

	return nil
}

const deleteImageQuery = `
	DELETE FROM listing_images WHERE id = ? AND listing_kind = ? AND listing_id = ?
`

// DeleteImage removes one image row; deleting an unknown image is an error
func (r *SQLiteImageRepository) DeleteImage(ctx context.Context, ref domain.ListingRef, imageID int64) error {
	executor := db.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, deleteImageQuery, imageID, ref.Kind, ref.ID)
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}

	if affected == 0 {
		return domain.ErrImageNotFound
	}

	return nil
}

const deleteAllImagesQuery = `
	DELETE FROM listing_images WHERE listing_kind = ? AND listing_id = ?
`

// DeleteAllImages removes every image of a listing and returns the removed
// rows so the caller can clean up their blobs.
func (r *SQLiteImageRepository) DeleteAllImages(ctx context.Context, ref domain.ListingRef) ([]*domain.Image, error) {
	removed, err := r.ListImages(ctx, ref)
	if err != nil {
		return nil, err
	}

	executor := db.GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, deleteAllImagesQuery, ref.Kind, ref.ID); err != nil {
		return nil, fmt.Errorf("failed to delete listing images: %w", err)
	}

	return removed, nil
}

const clearCoverQuery = `
	UPDATE listing_images SET is_cover = 0
	WHERE listing_kind = ? AND listing_id = ? AND is_cover = 1
`

// ClearCover demotes the listing's current cover image, if any
func (r *SQLiteImageRepository) ClearCover(ctx context.Context, ref domain.ListingRef) error {
	executor := db.GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, clearCoverQuery, ref.Kind, ref.ID); err != nil {
		return fmt.Errorf("failed to clear cover flag: %w", err)
	}

	return nil
}

const markCoverQuery = `
	UPDATE listing_images SET is_cover = 1
	WHERE id = ? AND listing_kind = ? AND listing_id = ?
`

// MarkCover sets the cover flag on one image of the listing
func (r *SQLiteImageRepository) MarkCover(ctx context.Context, ref domain.ListingRef, imageID int64) error {
	executor := db.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, markCoverQuery, imageID, ref.Kind, ref.ID)
	if err != nil {
		return fmt.Errorf("failed to mark cover image: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}

	if affected == 0 {
		return domain.ErrImageNotFound
	}

	return nil
}

const setActiveQuery = `
	UPDATE listing_images SET is_active = ?
	WHERE id = ? AND listing_kind = ? AND listing_id = ?
`

// SetActive flips the soft-delete flag on one image
func (r *SQLiteImageRepository) SetActive(ctx context.Context, ref domain.ListingRef, imageID int64, active bool) error {
	executor := db.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, setActiveQuery, active, imageID, ref.Kind, ref.ID)
	if err != nil {
		return fmt.Errorf("failed to update image active flag: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}

	if affected == 0 {
		return domain.ErrImageNotFound
	}

	return nil
}

// imageRow is a private struct used to scan database rows
type imageRow struct {
	ID          int64
	ListingKind string
	ListingID   string
	ObjectKey   string
	IsCover     bool
	IsActive    bool
	UploadedAt  sql.NullTime
}

// toDomain converts an imageRow to a domain.Image, handling nullable times
func (ir *imageRow) toDomain() *domain.Image {
	img := &domain.Image{
		ID: ir.ID,
		Listing: domain.ListingRef{
			Kind: domain.ListingKind(ir.ListingKind),
			ID:   ir.ListingID,
		},
		ObjectKey: ir.ObjectKey,
		IsCover:   ir.IsCover,
		IsActive:  ir.IsActive,
	}

	if ir.UploadedAt.Valid {
		img.UploadedAt = ir.UploadedAt.Time
	}

	return img
}
