package api

import "time"

type PropertyRequest struct {
	AdvertiseNo  string  `json:"advertise_no"`
	Title        string  `json:"title" binding:"required"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
	Address      string  `json:"address"`
	PropertyType string  `json:"property_type"`
	RoomType     string  `json:"room_type"`
	Status       string  `json:"status"`
}

type Property struct {
	ID           int64     `json:"id"`
	AdvertiseNo  string    `json:"advertise_no,omitempty"`
	Title        string    `json:"title"`
	Price        float64   `json:"price"`
	Currency     string    `json:"currency"`
	Address      string    `json:"address"`
	PropertyType string    `json:"property_type"`
	RoomType     string    `json:"room_type"`
	Status       string    `json:"status"`
	PublishedAt  time.Time `json:"published_at"`
	CoverURL     string    `json:"cover_image_url,omitempty"`
	Images       []Image   `json:"images,omitempty"`
}

type CarRequest struct {
	Title     string        `json:"title" binding:"required"`
	Brand     string        `json:"brand"`
	Series    string        `json:"series"`
	ModelYear int           `json:"model_year"`
	Price     float64       `json:"price"`
	Currency  string        `json:"currency"`
	FuelType  string        `json:"fuel_type"`
	GearType  string        `json:"gear_type"`
	IsActive  *bool         `json:"is_active"`
	Images    []ImageUpload `json:"images"`
}

// CarUpdateRequest distinguishes "no images key" from "empty images list":
// a present list, even empty, replaces the car's whole gallery.
type CarUpdateRequest struct {
	Title     string         `json:"title" binding:"required"`
	Brand     string         `json:"brand"`
	Series    string         `json:"series"`
	ModelYear int            `json:"model_year"`
	Price     float64        `json:"price"`
	Currency  string         `json:"currency"`
	FuelType  string         `json:"fuel_type"`
	GearType  string         `json:"gear_type"`
	IsActive  *bool          `json:"is_active"`
	Images    *[]ImageUpload `json:"images"`
}

type Car struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Brand       string    `json:"brand"`
	Series      string    `json:"series"`
	ModelYear   int       `json:"model_year,omitempty"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	FuelType    string    `json:"fuel_type"`
	GearType    string    `json:"gear_type"`
	IsActive    bool      `json:"is_active"`
	PublishedAt time.Time `json:"published_at"`
	CoverURL    string    `json:"cover_image_url,omitempty"`
	Images      []Image   `json:"images,omitempty"`
}

type OfferRequest struct {
	Kind          string        `json:"kind" binding:"required"`
	FullName      string        `json:"full_name" binding:"required"`
	Phone         string        `json:"phone"`
	Email         string        `json:"email"`
	Province      string        `json:"province"`
	District      string        `json:"district"`
	ExpectedPrice float64       `json:"expected_price"`
	Currency      string        `json:"currency"`
	Images        []ImageUpload `json:"images"`
}

type Offer struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	FullName      string    `json:"full_name"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Province      string    `json:"province,omitempty"`
	District      string    `json:"district,omitempty"`
	ExpectedPrice float64   `json:"expected_price,omitempty"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	Images        []Image   `json:"images,omitempty"`
}

type OfferResponseRequest struct {
	Message      string  `json:"message" binding:"required"`
	OfferedPrice float64 `json:"offered_price"`
	Currency     string  `json:"currency"`
}

type OfferResponse struct {
	ID           int64     `json:"id"`
	OfferID      string    `json:"offer_id"`
	Message      string    `json:"message"`
	OfferedPrice float64   `json:"offered_price,omitempty"`
	Currency     string    `json:"currency"`
	CreatedAt    time.Time `json:"created_at"`
}
