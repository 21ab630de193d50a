// Package catalog holds the immutable style and size tables plus the request
// limits. Entries are loaded once at compile time and never change at runtime.
package catalog

// StyleConfig is one named prompt-enhancement preset.
type StyleConfig struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Prompt      string `json:"prompt"`
	Description string `json:"description"`
}

// SizeConfig is one supported output resolution.
type SizeConfig struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Request limits.
const (
	MaxPromptLength  = 500
	MaxBatchSize     = 4
	DefaultBatchSize = 1
	DefaultSize      = "1024x1024"
	MaxHistoryItems  = 50
	HistoryViewLimit = 20
)

var Sizes = []SizeConfig{
	{Label: "512×512", Value: "512x512", Width: 512, Height: 512},
	{Label: "768×768", Value: "768x768", Width: 768, Height: 768},
	{Label: "1024×1024", Value: "1024x1024", Width: 1024, Height: 1024},
	{Label: "1536×1024", Value: "1536x1024", Width: 1536, Height: 1024},
	{Label: "1024×1536", Value: "1024x1536", Width: 1024, Height: 1536},
}

var Styles = []StyleConfig{
	{ID: "realistic", Name: "Realistic", Prompt: "photorealistic, high quality, detailed", Description: "Lifelike and natural appearance"},
	{ID: "artistic", Name: "Artistic", Prompt: "artistic, creative, expressive style", Description: "Creative and expressive artwork"},
	{ID: "digital-art", Name: "Digital Art", Prompt: "digital art, vibrant colors, modern style", Description: "Modern digital illustration"},
	{ID: "fantasy", Name: "Fantasy", Prompt: "fantasy art, magical, ethereal, mystical", Description: "Magical and mystical themes"},
	{ID: "abstract", Name: "Abstract", Prompt: "abstract art, geometric, contemporary", Description: "Non-representational art forms"},
	{ID: "vintage", Name: "Vintage", Prompt: "vintage style, retro, classic aesthetic", Description: "Nostalgic and classic appearance"},
}

// StyleByID looks up a style preset. The second return is false when the id
// is unknown.
func StyleByID(id string) (StyleConfig, bool) {
	for _, s := range Styles {
		if s.ID == id {
			return s, true
		}
	}
	return StyleConfig{}, false
}

// SizeByValue looks up a size by its "WxH" value.
func SizeByValue(value string) (SizeConfig, bool) {
	for _, s := range Sizes {
		if s.Value == value {
			return s, true
		}
	}
	return SizeConfig{}, false
}

// SizeValues returns the list of valid "WxH" strings.
func SizeValues() []string {
	values := make([]string, len(Sizes))
	for i, s := range Sizes {
		values[i] = s.Value
	}
	return values
}

// ValidTheme reports whether the settings theme value is one of the
// enumerated options.
func ValidTheme(theme string) bool {
	switch theme {
	case "light", "dark", "system":
		return true
	}
	return false
}
