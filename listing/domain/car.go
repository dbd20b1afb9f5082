package domain

import (
	"context"
	"time"
)

// Car is a vehicle advertisement
type Car struct {
	ID          int64
	Title       string
	Brand       string
	Series      string
	ModelYear   int
	Price       float64
	Currency    string
	FuelType    string
	GearType    string
	IsActive    bool
	PublishedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CarRepository interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	Create(ctx context.Context, c *Car) error
	Update(ctx context.Context, c *Car) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*Car, error)
	List(ctx context.Context, activeOnly bool) ([]*Car, error)
}
