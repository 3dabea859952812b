package tile

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCoordinates = errors.New("node has no coordinates")
	ErrUnsupportedFormat  = errors.New("tile format not supported")
	ErrTileStatus         = errors.New("unexpected tile response status")
)

// FetchError is returned when a tile could not be retrieved or merged. Payload holds the
// (possibly partial) response body.
type FetchError struct {
	Reference Reference
	URL       string
	Payload   []byte
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch tile %v (%v): %v", e.Reference, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
