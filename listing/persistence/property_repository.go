package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kibrisacil/classifieds/listing/domain"
	"github.com/kibrisacil/classifieds/shared/db"
)

var _ domain.PropertyRepository = (*SQLitePropertyRepository)(nil)

// SQLitePropertyRepository implements domain.PropertyRepository using SQL database (SQLite)
type SQLitePropertyRepository struct {
	db *sql.DB
}

// NewPropertyRepository creates a new SQLitePropertyRepository from a standard sql.DB
func NewPropertyRepository(sqlDB *sql.DB) *SQLitePropertyRepository {
	return &SQLitePropertyRepository{
		db: sqlDB,
	}
}

func (r *SQLitePropertyRepository) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.RunInTransaction(ctx, r.db, fn)
}

const insertPropertyQuery = `
	INSERT INTO properties (advertise_no, title, price, currency, address, property_type, room_type, status, published_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Create persists a new property advertisement and fills in its ID
func (r *SQLitePropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	if p == nil {
		return fmt.Errorf("property cannot be nil")
	}

	if p.Title == "" {
		return fmt.Errorf("property title cannot be empty: %w", domain.ErrInvalidListingData)
	}

	now := time.Now().UTC()
	if p.PublishedAt.IsZero() {
		p.PublishedAt = now
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = domain.AdvertOn
	}
	if p.Currency == "" {
		p.Currency = "TRY"
	}

	executor := db.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, insertPropertyQuery,
		p.AdvertiseNo,
		p.Title,
		p.Price,
		p.Currency,
		p.Address,
		p.PropertyType,
		p.RoomType,
		p.Status,
		p.PublishedAt,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert property: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted property id: %w", err)
	}
	p.ID = id

	return nil
}

const updatePropertyQuery = `
	UPDATE properties
	SET advertise_no = ?, title = ?, price = ?, currency = ?, address = ?, property_type = ?, room_type = ?, status = ?, updated_at = ?
	WHERE id = ?
`

// Update rewrites a property's mutable fields
func (r *SQLitePropertyRepository) Update(ctx context.Context, p *domain.Property) error {
	if p == nil {
		return fmt.Errorf("property cannot be nil")
	}

	p.UpdatedAt = time.Now().UTC()

	executor := db.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, updatePropertyQuery,
		p.AdvertiseNo,
		p.Title,
		p.Price,
		p.Currency,
		p.Address,
		p.PropertyType,
		p.RoomType,
		p.Status,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}

	if affected == 0 {
		return domain.ErrListingNotFound
	}

	return nil
}

const deletePropertyQuery = `
	DELETE FROM properties WHERE id = ?
`

// Delete removes a property row
func (r *SQLitePropertyRepository) Delete(ctx context.Context, id int64) error {
	executor := db.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, deletePropertyQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}

	if affected == 0 {
		return domain.ErrListingNotFound
	}

	return nil
}

const getPropertyQuery = `
	SELECT id, advertise_no, title, price, currency, address, property_type, room_type, status, published_at, created_at, updated_at
	FROM properties
	WHERE id = ?
`

// Get retrieves a single property by ID
func (r *SQLitePropertyRepository) Get(ctx context.Context, id int64) (*domain.Property, error) {
	executor := db.GetExecutor(ctx, r.db)

	var row propertyRow
	err := executor.QueryRowContext(ctx, getPropertyQuery, id).Scan(
		&row.ID,
		&row.AdvertiseNo,
		&row.Title,
		&row.Price,
		&row.Currency,
		&row.Address,
		&row.PropertyType,
		&row.RoomType,
		&row.Status,
		&row.PublishedAt,
		&row.CreatedAt,
		&row.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrListingNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	return row.toDomain(), nil
}

const listPropertiesQuery = `
	SELECT id, advertise_no, title, price, currency, address, property_type, room_type, status, published_at, created_at, updated_at
	FROM properties
	%s
	ORDER BY published_at DESC
`

// List retrieves properties newest-first, optionally restricted to active ones
func (r *SQLitePropertyRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Property, error) {
	where := ""
	args := []any{}
	if activeOnly {
		where = "WHERE status = ?"
		args = append(args, domain.AdvertOn)
	}

	executor := db.GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, fmt.Sprintf(listPropertiesQuery, where), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	properties := make([]*domain.Property, 0)
	for rows.Next() {
		var row propertyRow
		err := rows.Scan(
			&row.ID,
			&row.AdvertiseNo,
			&row.Title,
			&row.Price,
			&row.Currency,
			&row.Address,
			&row.PropertyType,
			&row.RoomType,
			&row.Status,
			&row.PublishedAt,
			&row.CreatedAt,
			&row.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property row: %w", err)
		}
		properties = append(properties, row.toDomain())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating property rows: %w", err)
	}

	return properties, nil
}

// propertyRow is a private struct used to scan database rows
type propertyRow struct {
	ID           int64
	AdvertiseNo  sql.NullString
	Title        string
	Price        float64
	Currency     string
	Address      string
	PropertyType string
	RoomType     string
	Status       string
	PublishedAt  sql.NullTime
	CreatedAt    sql.NullTime
	UpdatedAt    sql.NullTime
}

// toDomain converts a propertyRow to a domain.Property, handling nullable fields
func (pr *propertyRow) toDomain() *domain.Property {
	p := &domain.Property{
		ID:           pr.ID,
		Title:        pr.Title,
		Price:        pr.Price,
		Currency:     pr.Currency,
		Address:      pr.Address,
		PropertyType: pr.PropertyType,
		RoomType:     pr.RoomType,
		Status:       domain.AdvertStatus(pr.Status),
	}

	if pr.AdvertiseNo.Valid {
		p.AdvertiseNo = pr.AdvertiseNo.String
	}
	if pr.PublishedAt.Valid {
		p.PublishedAt = pr.PublishedAt.Time
	}
	if pr.CreatedAt.Valid {
		p.CreatedAt = pr.CreatedAt.Time
	}
	if pr.UpdatedAt.Valid {
		p.UpdatedAt = pr.UpdatedAt.Time
	}

	return p
}
