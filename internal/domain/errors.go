package domain

import "errors"

var (
	ErrImageNotFound     = errors.New("image not found")
	ErrUnsupportedFormat = errors.New("recognized but unsupported image format")
	ErrInvalidImageData  = errors.New("invalid image data")
	ErrStorageFailed     = errors.New("storage operation failed")
	ErrPublishFailed     = errors.New("event publish failed")
)
