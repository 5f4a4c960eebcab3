package entity

import "errors"

var (
	ErrBlogNotFound = errors.New("blog not found")
	ErrForbidden    = errors.New("you are not authorized")
	ErrInvalidInput = errors.New("invalid input")
)

// UploadError reports a failed image upload to the asset store.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string { return "image upload failed: " + e.Err.Error() }
func (e *UploadError) Unwrap() error { return e.Err }

// AssetDeleteError reports a failed image deletion in the asset store.
type AssetDeleteError struct {
	Key string
	Err error
}

func (e *AssetDeleteError) Error() string {
	return "image delete failed for " + e.Key + ": " + e.Err.Error()
}
func (e *AssetDeleteError) Unwrap() error { return e.Err }

// PersistenceError reports a failed database operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }
