package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kibrisacil/classifieds/listing/domain"
	"github.com/kibrisacil/classifieds/shared/db"
)

var _ domain.CarRepository = (*SQLiteCarRepository)(nil)

// SQLiteCarRepository implements domain.CarRepository using SQL database (SQLite)
type SQLiteCarRepository struct {
	db *sql.DB
}

// NewCarRepository creates a new SQLiteCarRepository from a standard sql.DB
func NewCarRepository(sqlDB *sql.DB) *SQLiteCarRepository {
	return &SQLiteCarRepository{
		db: sqlDB,
	}
}

func (r *SQLiteCarRepository) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.RunInTransaction(ctx, r.db, fn)
}

const insertCarQuery = `
	INSERT INTO cars (title, brand, series, model_year, price, currency, fuel_type, gear_type, is_active, published_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Create persists a new car advertisement and fills in its ID
func (r *SQLiteCarRepository) Create(ctx context.Context, c *domain.Car) error {
	if c == nil {
		return fmt.Errorf("car cannot be nil")
	}

	if c.Title == "" {
		return fmt.Errorf("car title cannot be empty: %w", domain.ErrInvalidListingData)
	}

	now := time.Now().UTC()
	if c.PublishedAt.IsZero() {
		c.PublishedAt = now
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Currency == "" {
		c.Currency = "TRY"
	}

	executor := db.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, insertCarQuery,
		c.Title,
		c.Brand,
		c.Series,
		c.ModelYear,
		c.Price,
		c.Currency,
		c.FuelType,
		c.GearType,
		c.IsActive,
		c.PublishedAt,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert car: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted car id: %w", err)
	}
	c.ID = id

	return nil
}

const updateCarQuery = `
	UPDATE cars
	SET title = ?, brand = ?, series = ?, model_year = ?, price = ?, currency = ?, fuel_type = ?, gear_type = ?, is_active = ?, updated_at = ?
	WHERE id = ?
`

// Update rewrites a car's mutable fields
func (r *SQLiteCarRepository) Update(ctx context.Context, c *domain.Car) error {
	if c == nil {
		return fmt.Errorf("car cannot be nil")
	}

	c.UpdatedAt = time.Now().UTC()

	executor := db.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, updateCarQuery,
		c.Title,
		c.Brand,
		c.Series,
		c.ModelYear,
		c.Price,
		c.Currency,
		c.FuelType,
		c.GearType,
		c.IsActive,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update car: %w", err)
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

const deleteCarQuery = `
	DELETE FROM cars WHERE id = ?
`

// Delete removes a car row
func (r *SQLiteCarRepository) Delete(ctx context.Context, id int64) error {
	executor := db.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, deleteCarQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete car: %w", err)
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

const getCarQuery = `
	SELECT id, title, brand, series, model_year, price, currency, fuel_type, gear_type, is_active, published_at, created_at, updated_at
	FROM cars
	WHERE id = ?
`

// Get retrieves a single car by ID
func (r *SQLiteCarRepository) Get(ctx context.Context, id int64) (*domain.Car, error) {
	executor := db.GetExecutor(ctx, r.db)

	var row carRow
	err := executor.QueryRowContext(ctx, getCarQuery, id).Scan(
		&row.ID,
		&row.Title,
		&row.Brand,
		&row.Series,
		&row.ModelYear,
		&row.Price,
		&row.Currency,
		&row.FuelType,
		&row.GearType,
		&row.IsActive,
		&row.PublishedAt,
		&row.CreatedAt,
		&row.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrListingNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get car: %w", err)
	}

	return row.toDomain(), nil
}

const listCarsQuery = `
	SELECT id, title, brand, series, model_year, price, currency, fuel_type, gear_type, is_active, published_at, created_at, updated_at
	FROM cars
	%s
	ORDER BY published_at DESC
`

// List retrieves cars newest-first, optionally restricted to active ones
func (r *SQLiteCarRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Car, error) {
	where := ""
	args := []any{}
	if activeOnly {
		where = "WHERE is_active = 1"
	}

	executor := db.GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, fmt.Sprintf(listCarsQuery, where), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", err)
	}
	defer rows.Close()

	cars := make([]*domain.Car, 0)
	for rows.Next() {
		var row carRow
		err := rows.Scan(
			&row.ID,
			&row.Title,
			&row.Brand,
			&row.Series,
			&row.ModelYear,
			&row.Price,
			&row.Currency,
			&row.FuelType,
			&row.GearType,
			&row.IsActive,
			&row.PublishedAt,
			&row.CreatedAt,
			&row.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan car row: %w", err)
		}
		cars = append(cars, row.toDomain())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating car rows: %w", err)
	}

	return cars, nil
}

// carRow is a private struct used to scan database rows
type carRow struct {
	ID          int64
	Title       string
	Brand       string
	Series      string
	ModelYear   sql.NullInt64
	Price       float64
	Currency    string
	FuelType    string
	GearType    string
	IsActive    bool
	PublishedAt sql.NullTime
	CreatedAt   sql.NullTime
	UpdatedAt   sql.NullTime
}

// toDomain converts a carRow to a domain.Car, handling nullable fields
func (cr *carRow) toDomain() *domain.Car {
	c := &domain.Car{
		ID:       cr.ID,
		Title:    cr.Title,
		Brand:    cr.Brand,
		Series:   cr.Series,
		Price:    cr.Price,
		Currency: cr.Currency,
		FuelType: cr.FuelType,
		GearType: cr.GearType,
		IsActive: cr.IsActive,
	}

	if cr.ModelYear.Valid {
		c.ModelYear = int(cr.ModelYear.Int64)
	}
	if cr.PublishedAt.Valid {
		c.PublishedAt = cr.PublishedAt.Time
	}
	if cr.CreatedAt.Valid {
		c.CreatedAt = cr.CreatedAt.Time
	}
	if cr.UpdatedAt.Valid {
		c.UpdatedAt = cr.UpdatedAt.Time
	}

	return c
}
