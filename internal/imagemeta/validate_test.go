package imagemeta

import (
	"errors"
	"testing"
)

func paddedPNG(width, height uint32, totalBytes int) []byte {
	data := pngHeader(width, height)
	if len(data) >= totalBytes {
		return data[:totalBytes]
	}
	return append(data, make([]byte, totalBytes-len(data))...)
}

func TestValidateByteBoundaries(t *testing.T) {
	limits := Limits{MinBytes: 1024, MaxBytes: 4096, MinDimension: 200}

	if _, err := Validate(paddedPNG(300, 300, 1024), limits); err != nil {
		t.Fatalf("Validate() at min bytes error = %v", err)
	}
	if _, err := Validate(paddedPNG(300, 300, 1023), limits); !errors.Is(err, ErrTooSmall) {
		t.Fatalf("Validate() one byte below min error = %v, want ErrTooSmall", err)
	}
	if _, err := Validate(paddedPNG(300, 300, 4096), limits); err != nil {
		t.Fatalf("Validate() at max bytes error = %v", err)
	}
	if _, err := Validate(paddedPNG(300, 300, 4097), limits); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Validate() one byte above max error = %v, want ErrTooLarge", err)
	}
}

func TestValidateDimensionBoundaries(t *testing.T) {
	limits := Limits{MinBytes: 64, MaxBytes: 1 << 20, MinDimension: 200}

	info, err := Validate(paddedPNG(200, 300, 64), limits)
	if err != nil {
		t.Fatalf("Validate() at min dimension error = %v", err)
	}
	if info.Width != 200 || info.Height != 300 {
		t.Fatalf("Validate() dimensions = %dx%d", info.Width, info.Height)
	}

	if _, err := Validate(paddedPNG(199, 300, 64), limits); !errors.Is(err, ErrTooLowResolution) {
		t.Fatalf("Validate() below min width error = %v, want ErrTooLowResolution", err)
	}
	if _, err := Validate(paddedPNG(300, 199, 64), limits); !errors.Is(err, ErrTooLowResolution) {
		t.Fatalf("Validate() below min height error = %v, want ErrTooLowResolution", err)
	}
}

func TestValidateRejectsUnknownPayload(t *testing.T) {
	limits := Limits{MinBytes: 4, MaxBytes: 1 << 20, MinDimension: 1}

	if _, err := Validate([]byte("<html>not found</html>"), limits); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("Validate() error = %v, want ErrUnknownFormat", err)
	}
}
