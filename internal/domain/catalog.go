package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const spriteURLTemplate = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/%d.png"

// CatalogEntry is one row of the catalog list. ID and ImageURL are always
// derived from ResourceURL and never stored.
type CatalogEntry struct {
	Name        string `json:"name"`
	ResourceURL string `json:"url"`
}

func (e CatalogEntry) ID() int {
	return DeriveID(e.ResourceURL)
}

func (e CatalogEntry) ImageURL() string {
	return DeriveImageURL(e.ID())
}

var nameCaser = cases.Title(language.English)

// DisplayName capitalizes every word of a catalog name: "mr-mime" becomes
// "Mr-Mime".
func DisplayName(name string) string {
	return nameCaser.String(name)
}

// CatalogResponse is the wire shape of GET /pokemon?limit=N.
// Results is nil when the key is missing from the body.
type CatalogResponse struct {
	Results []CatalogResponseItem `json:"results"`
}

type CatalogResponseItem struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Entries keeps the response order, which is the display order.
func (r CatalogResponse) Entries() []CatalogEntry {
	return lo.Map(r.Results, func(item CatalogResponseItem, _ int) CatalogEntry {
		return CatalogEntry{Name: item.Name, ResourceURL: item.URL}
	})
}

// DeriveID returns the last non-empty "/" segment of resourceURL parsed as a
// base-10 integer, or 0 when there is no such numeric segment.
func DeriveID(resourceURL string) int {
	segments := strings.Split(resourceURL, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] == "" {
			continue
		}
		id, err := strconv.Atoi(segments[i])
		if err != nil {
			return 0
		}
		return id
	}
	return 0
}

func DeriveImageURL(id int) string {
	return fmt.Sprintf(spriteURLTemplate, id)
}
