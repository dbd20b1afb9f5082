package domain

import "errors"

var (
	ErrImageNotFound        = errors.New("image not found for this listing")
	ErrNoDecodableImages    = errors.New("no images could be processed")
	ErrUnsupportedImageType = errors.New("unsupported image type")
)
