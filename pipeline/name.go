package pipeline

import (
	"path/filepath"
	"strings"
)

// Attachment filenames are capped so platform clients don't choke on
// pathological video titles.
const maxNameRunes = 50

// AttachmentName builds the delivered filename from the video title,
// truncated to a bounded length with the asset's extension preserved.
func AttachmentName(title, path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		ext = ".mp4"
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "video"
	}
	if runes := []rune(title); len(runes) > maxNameRunes {
		title = string(runes[:maxNameRunes])
	}
	return title + ext
}
