package library

import (
	"path"
	"strconv"
	"strings"
)

// ImagePath derives the deterministic, slash-separated blob key for
// validated image bytes: category/brand/<familyID>/<sha256>.<ext>.
// Identical bytes always map to the identical key, which makes blob writes
// idempotent and the layout browsable by humans.
func ImagePath(category, brand string, familyID uint64, sha256, contentType string) string {
	return path.Join(
		sanitizeSegment(category),
		sanitizeSegment(brand),
		strconv.FormatUint(familyID, 10),
		sha256+extensionFor(contentType),
	)
}

func sanitizeSegment(segment string) string {
	segment = strings.ToLower(strings.TrimSpace(segment))
	for _, bad := range []string{" ", "/", "\\", ".."} {
		segment = strings.ReplaceAll(segment, bad, "-")
	}
	if segment == "" {
		return "unknown"
	}
	return segment
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
