package download

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"imagegen/models"
)

var (
	nonFilenameChars = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
)

// GenerateFilename derives a download filename from the prompt and metadata.
// The date component has day granularity, so repeated calls with identical
// inputs on the same day produce the same name.
func GenerateFilename(prompt, style, size string) string {
	clean := strings.ToLower(prompt)
	clean = nonFilenameChars.ReplaceAllString(clean, "")
	clean = whitespaceRuns.ReplaceAllString(clean, "-")
	if len(clean) > 50 {
		clean = clean[:50]
	}
	clean = strings.TrimSuffix(clean, "-")

	date := time.Now().Format("2006-01-02")

	var metadata []string
	if style != "" {
		metadata = append(metadata, whitespaceRuns.ReplaceAllString(strings.ToLower(style), "-"))
	}
	if size != "" {
		metadata = append(metadata, strings.ReplaceAll(size, "×", "x"))
	}

	metadataString := ""
	if len(metadata) > 0 {
		metadataString = "_" + strings.Join(metadata, "_")
	}

	return fmt.Sprintf("ai-image_%s_%s%s.png", clean, date, metadataString)
}

// FormatGenerationTime renders an elapsed-time measurement for display.
func FormatGenerationTime(milliseconds int64) string {
	switch {
	case milliseconds < 1000:
		return fmt.Sprintf("%dms", milliseconds)
	case milliseconds < 60000:
		return fmt.Sprintf("%.1fs", float64(milliseconds)/1000)
	default:
		minutes := milliseconds / 60000
		seconds := (milliseconds % 60000) / 1000
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
}

// ShareURL encodes an image's parameters into a shareable link under origin.
func ShareURL(origin string, img models.GeneratedImage) string {
	params := url.Values{}
	params.Set("prompt", img.Prompt)
	params.Set("style", img.Style)
	params.Set("size", img.Size)
	params.Set("imageId", img.ID)
	return origin + "/?share=" + url.QueryEscape(params.Encode())
}

// ParseShareURL recovers image parameters from a shared link's query. Returns
// ok=false when no share payload is present or it cannot be decoded.
func ParseShareURL(query url.Values) (models.GeneratedImage, bool) {
	shareData := query.Get("share")
	if shareData == "" {
		return models.GeneratedImage{}, false
	}
	decoded, err := url.QueryUnescape(shareData)
	if err != nil {
		return models.GeneratedImage{}, false
	}
	params, err := url.ParseQuery(decoded)
	if err != nil {
		return models.GeneratedImage{}, false
	}

	img := models.GeneratedImage{
		Prompt: params.Get("prompt"),
		Style:  params.Get("style"),
		Size:   params.Get("size"),
		ID:     params.Get("imageId"),
	}
	if img.Size == "" {
		img.Size = "1024x1024"
	}
	if img.ID == "" {
		img.ID = models.NewImageID()
	}
	return img, true
}
