package models

// UserSettings is the persisted settings record. Fields are enumerated and
// validated at the API boundary; unknown keys are rejected there.
type UserSettings struct {
	DefaultSize  string `json:"defaultSize"`
	DefaultStyle string `json:"defaultStyle"`
	Theme        string `json:"theme"`
	AutoEnhance  bool   `json:"autoEnhance"`
	SaveHistory  bool   `json:"saveHistory"`
}

// DefaultSettings returns the record created on first access.
func DefaultSettings() UserSettings {
	return UserSettings{
		DefaultSize:  "1024x1024",
		DefaultStyle: "",
		Theme:        "system",
		AutoEnhance:  false,
		SaveHistory:  true,
	}
}
