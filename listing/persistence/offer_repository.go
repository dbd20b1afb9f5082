package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kibrisacil/classifieds/listing/domain"
	"github.com/kibrisacil/classifieds/shared/db"
)

var _ domain.OfferRepository = (*SQLiteOfferRepository)(nil)

// SQLiteOfferRepository implements domain.OfferRepository using SQL database (SQLite)
type SQLiteOfferRepository struct {
	db *sql.DB
}

// NewOfferRepository creates a new SQLiteOfferRepository from a standard sql.DB
func NewOfferRepository(sqlDB *sql.DB) *SQLiteOfferRepository {
	return &SQLiteOfferRepository{
		db: sqlDB,
	}
}

func (r *SQLiteOfferRepository) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.RunInTransaction(ctx, r.db, fn)
}

const insertOfferQuery = `
	INSERT INTO offers (id, kind, full_name, phone, email, province, district, expected_price, currency, status, is_active, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Create persists a new offer, assigning a UUID when the caller left the ID empty
func (r *SQLiteOfferRepository) Create(ctx context.Context, o *domain.Offer) error {
	if o == nil {
		return fmt.Errorf("offer cannot be nil")
	}

	if o.FullName == "" {
		return fmt.Errorf("offer full name cannot be empty: %w", domain.ErrInvalidListingData)
	}

	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.Status == "" {
		o.Status = domain.OfferPending
	}
	if o.Currency == "" {
		o.Currency = "TRY"
	}
	o.IsActive = true

	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	executor := db.GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, insertOfferQuery,
		o.ID,
		o.Kind,
		o.FullName,
		o.Phone,
		o.Email,
		o.Province,
		o.District,
		o.ExpectedPrice,
		o.Currency,
		o.Status,
		o.IsActive,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert offer: %w", err)
	}

	return nil
}

const getOfferQuery = `
	SELECT id, kind, full_name, phone, email, province, district, expected_price, currency, status, is_active, created_at, updated_at
	FROM offers
	WHERE id = ?
`

// Get retrieves a single offer by ID
func (r *SQLiteOfferRepository) Get(ctx context.Context, id string) (*domain.Offer, error) {
	executor := db.GetExecutor(ctx, r.db)

	var row offerRow
	err := executor.QueryRowContext(ctx, getOfferQuery, id).Scan(
		&row.ID,
		&row.Kind,
		&row.FullName,
		&row.Phone,
		&row.Email,
		&row.Province,
		&row.District,
		&row.ExpectedPrice,
		&row.Currency,
		&row.Status,
		&row.IsActive,
		&row.CreatedAt,
		&row.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrListingNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}

	return row.toDomain(), nil
}

const listOffersQuery = `
	SELECT id, kind, full_name, phone, email, province, district, expected_price, currency, status, is_active, created_at, updated_at
	FROM offers
	WHERE is_active = 1
	ORDER BY created_at DESC
`

// List retrieves active offers newest-first
func (r *SQLiteOfferRepository) List(ctx context.Context) ([]*domain.Offer, error) {
	executor := db.GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, listOffersQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	defer rows.Close()

	offers := make([]*domain.Offer, 0)
	for rows.Next() {
		var row offerRow
		err := rows.Scan(
			&row.ID,
			&row.Kind,
			&row.FullName,
			&row.Phone,
			&row.Email,
			&row.Province,
			&row.District,
			&row.ExpectedPrice,
			&row.Currency,
			&row.Status,
			&row.IsActive,
			&row.CreatedAt,
			&row.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer row: %w", err)
		}
		offers = append(offers, row.toDomain())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offer rows: %w", err)
	}

	return offers, nil
}

const updateOfferStatusQuery = `
	UPDATE offers SET status = ?, updated_at = ? WHERE id = ?
`

// UpdateStatus moves an offer through the admin workflow
func (r *SQLiteOfferRepository) UpdateStatus(ctx context.Context, id string, status domain.OfferStatus) error {
	executor := db.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, updateOfferStatusQuery, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update offer status: %w", err)
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

const deactivateOfferQuery = `
	UPDATE offers SET is_active = 0, updated_at = ? WHERE id = ? AND is_active = 1
`

// Deactivate soft-deletes an offer
func (r *SQLiteOfferRepository) Deactivate(ctx context.Context, id string) error {
	executor := db.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, deactivateOfferQuery, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate offer: %w", err)
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

const insertOfferResponseQuery = `
	INSERT INTO offer_responses (offer_id, message, offered_price, currency, created_at)
	VALUES (?, ?, ?, ?, ?)
`

// AddResponse records an admin reply to an offer
func (r *SQLiteOfferRepository) AddResponse(ctx context.Context, resp *domain.OfferResponse) error {
	if resp == nil {
		return fmt.Errorf("offer response cannot be nil")
	}

	if resp.Currency == "" {
		resp.Currency = "TRY"
	}
	resp.CreatedAt = time.Now().UTC()

	executor := db.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, insertOfferResponseQuery,
		resp.OfferID,
		resp.Message,
		resp.OfferedPrice,
		resp.Currency,
		resp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert offer response: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted response id: %w", err)
	}
	resp.ID = id

	return nil
}

const listOfferResponsesQuery = `
	SELECT id, offer_id, message, offered_price, currency, created_at
	FROM offer_responses
	WHERE offer_id = ?
	ORDER BY created_at DESC
`

// ListResponses retrieves an offer's responses newest-first
func (r *SQLiteOfferRepository) ListResponses(ctx context.Context, offerID string) ([]*domain.OfferResponse, error) {
	executor := db.GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, listOfferResponsesQuery, offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list offer responses: %w", err)
	}
	defer rows.Close()

	responses := make([]*domain.OfferResponse, 0)
	for rows.Next() {
		var resp domain.OfferResponse
		var offeredPrice sql.NullFloat64
		var createdAt sql.NullTime
		err := rows.Scan(
			&resp.ID,
			&resp.OfferID,
			&resp.Message,
			&offeredPrice,
			&resp.Currency,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer response row: %w", err)
		}
		if offeredPrice.Valid {
			resp.OfferedPrice = offeredPrice.Float64
		}
		if createdAt.Valid {
			resp.CreatedAt = createdAt.Time
		}
		responses = append(responses, &resp)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offer response rows: %w", err)
	}

	return responses, nil
}

// offerRow is a private struct used to scan database rows
type offerRow struct {
	ID            string
	Kind          string
	FullName      string
	Phone         string
	Email         string
	Province      string
	District      string
	ExpectedPrice sql.NullFloat64
	Currency      string
	Status        string
	IsActive      bool
	CreatedAt     sql.NullTime
	UpdatedAt     sql.NullTime
}

// toDomain converts an offerRow to a domain.Offer, handling nullable fields
func (or *offerRow) toDomain() *domain.Offer {
	o := &domain.Offer{
		ID:       or.ID,
		Kind:     domain.OfferKind(or.Kind),
		FullName: or.FullName,
		Phone:    or.Phone,
		Email:    or.Email,
		Province: or.Province,
		District: or.District,
		Currency: or.Currency,
		Status:   domain.OfferStatus(or.Status),
		IsActive: or.IsActive,
	}

	if or.ExpectedPrice.Valid {
		o.ExpectedPrice = or.ExpectedPrice.Float64
	}
	if or.CreatedAt.Valid {
		o.CreatedAt = or.CreatedAt.Time
	}
	if or.UpdatedAt.Valid {
		o.UpdatedAt = or.UpdatedAt.Time
	}

	return o
}
