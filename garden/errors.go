package garden

import "errors"

var (
	// ErrNotFound marks lookups that resolved to nothing where the caller
	// asked for a concrete record (handlers map it to 404).
	ErrNotFound = errors.New("record not found")

	// ErrPhotoLimit rejects adding a photo beyond MaxPhotosPerPlant.
	ErrPhotoLimit = errors.New("photo limit reached for plant")

	// ErrImageDecode and ErrImageEncode surface compression failures
	// distinctly from storage errors; nothing is persisted when they occur.
	ErrImageDecode = errors.New("failed to decode image")
	ErrImageEncode = errors.New("failed to encode image")
)
