package api

import "time"

// ImageUpload is one entry of a JSON image payload: a base64 string,
// optionally a data URI, plus an explicit cover flag.
type ImageUpload struct {
	Image   string `json:"image"`
	IsCover bool   `json:"is_cover"`
}

// Image is the wire representation of a persisted gallery image.
type Image struct {
	ID         int64     `json:"id"`
	URL        string    `json:"url"`
	IsCover    bool      `json:"is_cover"`
	IsActive   bool      `json:"is_active"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ImageFlagsPatch is the admin patch body for one offer image. Nil fields
// are left unchanged.
type ImageFlagsPatch struct {
	IsCover  *bool `json:"is_cover"`
	IsActive *bool `json:"is_active"`
}
