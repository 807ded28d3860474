package imagemeta

import (
	"encoding/binary"
	"errors"
	"testing"
)

func pngHeader(width, height uint32) []byte {
	data := make([]byte, 0, 24)
	data = append(data, 0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A)
	data = append(data, 0x00, 0x00, 0x00, 0x0D)
	data = append(data, 'I', 'H', 'D', 'R')
	data = binary.BigEndian.AppendUint32(data, width)
	data = binary.BigEndian.AppendUint32(data, height)
	return data
}

func jpegHeader(width, height uint16) []byte {
	data := []byte{0xFF, 0xD8}
	// APP0 segment before the frame header, as JFIF encoders emit.
	data = append(data, 0xFF, 0xE0, 0x00, 0x10)
	data = append(data, make([]byte, 14)...)
	// SOF0: length 17, precision 8, height, width, 3 components.
	data = append(data, 0xFF, 0xC0, 0x00, 0x11, 0x08)
	data = binary.BigEndian.AppendUint16(data, height)
	data = binary.BigEndian.AppendUint16(data, width)
	data = append(data, 0x03, 0x01, 0x22, 0x00, 0x02, 0x11, 0x01, 0x03, 0x11, 0x01)
	return data
}

func webpVP8Header(width, height uint16) []byte {
	data := []byte("RIFF")
	data = binary.LittleEndian.AppendUint32(data, 100)
	data = append(data, []byte("WEBPVP8 ")...)
	data = binary.LittleEndian.AppendUint32(data, 92)
	data = append(data, 0x00, 0x00, 0x00) // frame tag
	data = append(data, 0x9D, 0x01, 0x2A) // sync code
	data = binary.LittleEndian.AppendUint16(data, width)
	data = binary.LittleEndian.AppendUint16(data, height)
	return data
}

func webpVP8LHeader(width, height int) []byte {
	data := []byte("RIFF")
	data = binary.LittleEndian.AppendUint32(data, 100)
	data = append(data, []byte("WEBPVP8L")...)
	data = binary.LittleEndian.AppendUint32(data, 92)
	data = append(data, 0x2F)

	w := uint32(width - 1)
	h := uint32(height - 1)
	bits := w | h<<14
	data = append(data,
		byte(bits),
		byte(bits>>8),
		byte(bits>>16),
		byte(bits>>24),
	)
	return data
}

func webpVP8XHeader(width, height int) []byte {
	data := []byte("RIFF")
	data = binary.LittleEndian.AppendUint32(data, 100)
	data = append(data, []byte("WEBPVP8X")...)
	data = binary.LittleEndian.AppendUint32(data, 10)
	data = append(data, 0x00, 0x00, 0x00, 0x00) // flags + reserved
	w := uint32(width - 1)
	h := uint32(height - 1)
	data = append(data, byte(w), byte(w>>8), byte(w>>16))
	data = append(data, byte(h), byte(h>>8), byte(h>>16))
	return data
}

func TestSniffPNG(t *testing.T) {
	info, err := Sniff(pngHeader(640, 480))
	if err != nil {
		t.Fatalf("Sniff() error = %v", err)
	}
	if info.Width != 640 || info.Height != 480 {
		t.Fatalf("Sniff() dimensions = %dx%d", info.Width, info.Height)
	}
	if info.ContentType != "image/png" {
		t.Fatalf("Sniff() content type = %q", info.ContentType)
	}
}

func TestSniffJPEG(t *testing.T) {
	info, err := Sniff(jpegHeader(1024, 768))
	if err != nil {
		t.Fatalf("Sniff() error = %v", err)
	}
	if info.Width != 1024 || info.Height != 768 {
		t.Fatalf("Sniff() dimensions = %dx%d", info.Width, info.Height)
	}
	if info.ContentType != "image/jpeg" {
		t.Fatalf("Sniff() content type = %q", info.ContentType)
	}
}

func TestSniffWEBP(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		width  int
		height int
	}{
		{name: "vp8 lossy", data: webpVP8Header(550, 368), width: 550, height: 368},
		{name: "vp8l lossless", data: webpVP8LHeader(800, 600), width: 800, height: 600},
		{name: "vp8x extended", data: webpVP8XHeader(1920, 1080), width: 1920, height: 1080},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := Sniff(tt.data)
			if err != nil {
				t.Fatalf("Sniff() error = %v", err)
			}
			if info.Width != tt.width || info.Height != tt.height {
				t.Fatalf("Sniff() dimensions = %dx%d, want %dx%d", info.Width, info.Height, tt.width, tt.height)
			}
			if info.ContentType != "image/webp" {
				t.Fatalf("Sniff() content type = %q", info.ContentType)
			}
		})
	}
}

func TestSniffRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{name: "empty", data: nil, wantErr: ErrUnknownFormat},
		{name: "garbage", data: []byte("not an image at all"), wantErr: ErrUnknownFormat},
		{name: "png signature only", data: pngHeader(1, 1)[:8], wantErr: ErrTruncated},
		{name: "png without ihdr", data: append(pngHeader(1, 1)[:12], []byte("tEXtAAAAAAAA")...), wantErr: ErrUnknownFormat},
		{name: "jpeg soi only", data: []byte{0xFF, 0xD8}, wantErr: ErrTruncated},
		{name: "jpeg truncated sof", data: jpegHeader(10, 10)[:24], wantErr: ErrTruncated},
		{name: "jpeg scan before frame", data: []byte{0xFF, 0xD8, 0xFF, 0xDA, 0x00, 0x04, 0x00, 0x00}, wantErr: ErrUnknownFormat},
		{name: "jpeg bad alignment", data: []byte{0xFF, 0xD8, 0x00, 0xC0, 0x00, 0x11}, wantErr: ErrUnknownFormat},
		{name: "webp header only", data: webpVP8Header(10, 10)[:14], wantErr: ErrTruncated},
		{name: "webp missing sync code", data: func() []byte {
			data := webpVP8Header(10, 10)
			data[23] = 0x00
			return data
		}(), wantErr: ErrUnknownFormat},
		{name: "webp unknown chunk", data: append([]byte("RIFF\x00\x00\x00\x00WEBP"), []byte("ICCP\x00\x00\x00\x00")...), wantErr: ErrUnknownFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Sniff(tt.data); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Sniff() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
