package domain

import (
	"context"
	"time"
)

// AdvertStatus controls whether a property advertisement is publicly listed.
type AdvertStatus string

const (
	AdvertOn  AdvertStatus = "on"
	AdvertOff AdvertStatus = "off"
)

// Property is a real-estate advertisement. Image state lives in the gallery
// core; a property only carries its own fields.
type Property struct {
	ID           int64
	AdvertiseNo  string
	Title        string
	Price        float64
	Currency     string
	Address      string
	PropertyType string
	RoomType     string
	Status       AdvertStatus
	PublishedAt  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type PropertyRepository interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	Create(ctx context.Context, p *Property) error
	Update(ctx context.Context, p *Property) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*Property, error)
	// List returns properties newest-first; activeOnly restricts to
	// advertisements with status "on".
	List(ctx context.Context, activeOnly bool) ([]*Property, error)
}
