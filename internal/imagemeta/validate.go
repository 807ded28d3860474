package imagemeta

import (
	"errors"
	"fmt"
)

// Limits bounds what counts as a usable reference image.
type Limits struct {
	MinBytes     int
	MaxBytes     int
	MinDimension int
}

var (
	ErrTooSmall         = errors.New("payload below minimum byte size")
	ErrTooLarge         = errors.New("payload above maximum byte size")
	ErrTooLowResolution = errors.New("image below minimum dimension")
)

// Validate rejects placeholder payloads, oversized payloads, unrecognized
// formats and thumbnail-sized images. Payloads exactly at a threshold pass.
func Validate(data []byte, limits Limits) (Info, error) {
	if len(data) < limits.MinBytes {
		return Info{}, fmt.Errorf("%w: %d bytes < %d", ErrTooSmall, len(data), limits.MinBytes)
	}
	if limits.MaxBytes > 0 && len(data) > limits.MaxBytes {
		return Info{}, fmt.Errorf("%w: %d bytes > %d", ErrTooLarge, len(data), limits.MaxBytes)
	}

	info, err := Sniff(data)
	if err != nil {
		return Info{}, err
	}

	if info.Width < limits.MinDimension || info.Height < limits.MinDimension {
		return Info{}, fmt.Errorf("%w: %dx%d < %d", ErrTooLowResolution, info.Width, info.Height, limits.MinDimension)
	}

	return info, nil
}
