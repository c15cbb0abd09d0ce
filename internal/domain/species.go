package domain

import (
	"strings"
	"time"

	"github.com/samber/lo"
)

const (
	DescriptionLanguage    = "en"
	DescriptionPlaceholder = "Description not available"
)

// SpeciesRecord is the wire shape of GET /pokemon-species/{id}/.
// FlavorTextEntries is nil when the key is missing from the body.
type SpeciesRecord struct {
	FlavorTextEntries []FlavorTextEntry `json:"flavor_text_entries"`
}

type FlavorTextEntry struct {
	FlavorText string   `json:"flavor_text"`
	Language   Language `json:"language"`
}

type Language struct {
	Name string `json:"name"`
}

// SelectDescription picks the first English entry in response order and
// replaces its newlines with spaces. The text is otherwise left untouched.
func SelectDescription(entries []FlavorTextEntry) (string, bool) {
	entry, found := lo.Find(entries, func(e FlavorTextEntry) bool {
		return e.Language.Name == DescriptionLanguage
	})
	if !found {
		return "", false
	}
	return strings.ReplaceAll(entry.FlavorText, "\n", " "), true
}

// DisplayDescription applies the presentation policy: trimmed text, or the
// placeholder when there is nothing to show.
func DisplayDescription(description string, found bool) string {
	text := strings.TrimSpace(description)
	if !found || text == "" {
		return DescriptionPlaceholder
	}
	return text
}

// Species is a synced catalog entry together with its description.
type Species struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	ImageURL       string    `json:"image_url"`
	Description    string    `json:"description,omitempty"`
	HasDescription bool      `json:"has_description"`
	SyncedAt       time.Time `json:"synced_at"`
}
