package domain

import (
	"context"
	"time"
)

// ListingKind identifies which advertisement type owns an image collection.
type ListingKind string

const (
	KindOffer    ListingKind = "offer"
	KindProperty ListingKind = "property"
	KindCar      ListingKind = "car"
)

// ListingRef is an opaque reference to the listing that owns a gallery.
// The ID is the listing's own primary key rendered as a string (integer
// for properties and cars, UUID for offers).
type ListingRef struct {
	Kind ListingKind
	ID   string
}

// Image is a persisted gallery image. At most one image per listing has
// IsCover set; IsActive is a soft-delete flag used only by offers and has
// no effect on cover bookkeeping.
type Image struct {
	ID         int64
	Listing    ListingRef
	ObjectKey  string
	IsCover    bool
	IsActive   bool
	UploadedAt time.Time
}

// CandidateImage is a normalized, not-yet-persisted image produced by the
// ingestion adapter. CoverIntent carries the caller's explicit is_cover
// flag; the multipart path never sets it.
type CandidateImage struct {
	Content     []byte
	Ext         string
	CoverIntent bool
}

// ImageRepository is the storage capability the gallery service runs on.
// All methods honor a transaction carried in the context; InTransaction
// opens one (or joins the ambient one) so that a whole operation commits
// or rolls back as a unit.
type ImageRepository interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// ListImages returns the listing's images ordered oldest-first
	// (uploaded_at, then id, ascending).
	ListImages(ctx context.Context, ref ListingRef) ([]*Image, error)
	GetImage(ctx context.Context, ref ListingRef, imageID int64) (*Image, error)
	HasCover(ctx context.Context, ref ListingRef) (bool, error)

	// InsertImage persists a new image row and fills in its ID.
	InsertImage(ctx context.Context, img *Image) error
	DeleteImage(ctx context.Context, ref ListingRef, imageID int64) error
	DeleteAllImages(ctx context.Context, ref ListingRef) ([]*Image, error)

	ClearCover(ctx context.Context, ref ListingRef) error
	MarkCover(ctx context.Context, ref ListingRef, imageID int64) error
	SetActive(ctx context.Context, ref ListingRef, imageID int64, active bool) error
}

// BlobStore holds image content outside the database. URL resolves an
// object key to a client-facing address.
type BlobStore interface {
	Put(ctx context.Context, key string, content []byte, contentType string) error
	Remove(ctx context.Context, key string) error
	URL(key string) string
}
