// Package imagemeta extracts image dimensions and content type from binary
// headers without decoding pixel data.
package imagemeta

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Info describes a sniffed image.
type Info struct {
	Width       int
	Height      int
	ContentType string
}

var (
	ErrUnknownFormat = errors.New("unrecognized image format")
	ErrTruncated     = errors.New("truncated image header")
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// Sniff detects PNG, JPEG or WEBP from the leading bytes and reads the
// dimensions straight out of the format headers.
func Sniff(data []byte) (Info, error) {
	switch {
	case hasPrefix(data, pngSignature):
		return sniffPNG(data)
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8:
		return sniffJPEG(data)
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return sniffWEBP(data)
	default:
		return Info{}, ErrUnknownFormat
	}
}

func hasPrefix(data, prefix []byte) bool {
	if len(data) < len(prefix) {
		return false
	}
	for i, b := range prefix {
		if data[i] != b {
			return false
		}
	}
	return true
}

// PNG: 8-byte signature, 4-byte chunk length, "IHDR", then width and height
// as big-endian uint32.
func sniffPNG(data []byte) (Info, error) {
	if len(data) < 24 {
		return Info{}, ErrTruncated
	}
	if string(data[12:16]) != "IHDR" {
		return Info{}, fmt.Errorf("%w: first png chunk is not IHDR", ErrUnknownFormat)
	}

	return Info{
		Width:       int(binary.BigEndian.Uint32(data[16:20])),
		Height:      int(binary.BigEndian.Uint32(data[20:24])),
		ContentType: "image/png",
	}, nil
}

// JPEG: walk the marker segments until a start-of-frame marker carries the
// dimensions. SOS before any SOF means the stream is not usable for us.
func sniffJPEG(data []byte) (Info, error) {
	i := 2
	for {
		if i+1 >= len(data) {
			return Info{}, ErrTruncated
		}
		if data[i] != 0xFF {
			return Info{}, fmt.Errorf("%w: bad jpeg marker alignment", ErrUnknownFormat)
		}
		// Fill bytes before a marker are legal.
		for i < len(data) && data[i] == 0xFF {
			i++
		}
		if i >= len(data) {
			return Info{}, ErrTruncated
		}
		marker := data[i]
		i++

		switch {
		case marker == 0x01 || (marker >= 0xD0 && marker <= 0xD9):
			// Standalone markers carry no payload.
			continue
		case isSOFMarker(marker):
			if i+7 > len(data) {
				return Info{}, ErrTruncated
			}
			return Info{
				Height:      int(binary.BigEndian.Uint16(data[i+3 : i+5])),
				Width:       int(binary.BigEndian.Uint16(data[i+5 : i+7])),
				ContentType: "image/jpeg",
			}, nil
		case marker == 0xDA:
			return Info{}, fmt.Errorf("%w: jpeg scan data before frame header", ErrUnknownFormat)
		default:
			if i+2 > len(data) {
				return Info{}, ErrTruncated
			}
			segLen := int(binary.BigEndian.Uint16(data[i : i+2]))
			if segLen < 2 {
				return Info{}, fmt.Errorf("%w: invalid jpeg segment length", ErrUnknownFormat)
			}
			i += segLen
		}
	}
}

func isSOFMarker(marker byte) bool {
	if marker < 0xC0 || marker > 0xCF {
		return false
	}
	// C4 (huffman), C8 (extension) and CC (arithmetic conditioning) are not
	// frame headers.
	return marker != 0xC4 && marker != 0xC8 && marker != 0xCC
}

// WEBP: RIFF container with a VP8 (lossy), VP8L (lossless) or VP8X
// (extended) leading chunk.
func sniffWEBP(data []byte) (Info, error) {
	if len(data) < 16 {
		return Info{}, ErrTruncated
	}

	switch string(data[12:16]) {
	case "VP8 ":
		if len(data) < 30 {
			return Info{}, ErrTruncated
		}
		if data[23] != 0x9D || data[24] != 0x01 || data[25] != 0x2A {
			return Info{}, fmt.Errorf("%w: missing vp8 sync code", ErrUnknownFormat)
		}
		return Info{
			Width:       int(binary.LittleEndian.Uint16(data[26:28]) & 0x3FFF),
			Height:      int(binary.LittleEndian.Uint16(data[28:30]) & 0x3FFF),
			ContentType: "image/webp",
		}, nil
	case "VP8L":
		if len(data) < 25 {
			return Info{}, ErrTruncated
		}
		if data[20] != 0x2F {
			return Info{}, fmt.Errorf("%w: missing vp8l signature", ErrUnknownFormat)
		}
		b0, b1, b2, b3 := int(data[21]), int(data[22]), int(data[23]), int(data[24])
		return Info{
			Width:       1 + (b0 | (b1&0x3F)<<8),
			Height:      1 + (b1>>6 | b2<<2 | (b3&0x0F)<<10),
			ContentType: "image/webp",
		}, nil
	case "VP8X":
		if len(data) < 30 {
			return Info{}, ErrTruncated
		}
		width := 1 + (int(data[24]) | int(data[25])<<8 | int(data[26])<<16)
		height := 1 + (int(data[27]) | int(data[28])<<8 | int(data[29])<<16)
		return Info{Width: width, Height: height, ContentType: "image/webp"}, nil
	default:
		return Info{}, fmt.Errorf("%w: unsupported webp variant", ErrUnknownFormat)
	}
}
