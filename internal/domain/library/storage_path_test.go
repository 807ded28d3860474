package library

import "testing"

func TestImagePath(t *testing.T) {
	tests := []struct {
		name        string
		category    string
		brand       string
		familyID    uint64
		sha256      string
		contentType string
		want        string
	}{
		{"jpeg", "watches", "Seiko", 7, "abc123", "image/jpeg", "watches/seiko/7/abc123.jpg"},
		{"png", "watches", "Casio", 2, "def456", "image/png", "watches/casio/2/def456.png"},
		{"webp", "sneakers", "Nike", 9, "fff", "image/webp", "sneakers/nike/9/fff.webp"},
		{"unknown content type falls back to jpg", "watches", "Seiko", 1, "aaa", "application/octet-stream", "watches/seiko/1/aaa.jpg"},
		{"spaces and slashes sanitized", "fine watches", "A/B Brand", 3, "bbb", "image/jpeg", "fine-watches/a-b-brand/3/bbb.jpg"},
		{"blank segment", " ", "Seiko", 4, "ccc", "image/jpeg", "unknown/seiko/4/ccc.jpg"},
		{"dot-dot neutralized", "..", "Seiko", 5, "ddd", "image/jpeg", "-/seiko/5/ddd.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ImagePath(tt.category, tt.brand, tt.familyID, tt.sha256, tt.contentType)
			if got != tt.want {
				t.Fatalf("ImagePath() = %q, want %q", got, tt.want)
			}
		})
	}
}
