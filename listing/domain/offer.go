package domain

import (
	"context"
	"time"
)

// OfferKind says what a customer is offering for sale.
type OfferKind string

const (
	OfferKindCar      OfferKind = "car"
	OfferKindProperty OfferKind = "property"
)

// OfferStatus tracks the admin workflow state of a submission.
type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferReviewed OfferStatus = "reviewed"
	OfferClosed   OfferStatus = "closed"
)

// Offer is a public sell-to-us submission. Offers use UUID identifiers and
// are soft-deleted via IsActive rather than removed.
type Offer struct {
	ID            string
	Kind          OfferKind
	FullName      string
	Phone         string
	Email         string
	Province      string
	District      string
	ExpectedPrice float64
	Currency      string
	Status        OfferStatus
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OfferResponse is an admin-curated reply to an offer.
type OfferResponse struct {
	ID           int64
	OfferID      string
	Message      string
	OfferedPrice float64
	Currency     string
	CreatedAt    time.Time
}

type OfferRepository interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	Create(ctx context.Context, o *Offer) error
	Get(ctx context.Context, id string) (*Offer, error)
	// List returns active offers newest-first.
	List(ctx context.Context) ([]*Offer, error)
	UpdateStatus(ctx context.Context, id string, status OfferStatus) error
	Deactivate(ctx context.Context, id string) error

	AddResponse(ctx context.Context, resp *OfferResponse) error
	ListResponses(ctx context.Context, offerID string) ([]*OfferResponse, error)
}
