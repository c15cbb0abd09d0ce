package export

import "pokedex/catalog/internal/domain"

// SpeciesRow is the flat snapshot record written to Parquet and CSV.
// Column names come from the parquet tags.
type SpeciesRow struct {
	ID             int32  `parquet:"name=id, type=INT32"`
	Name           string `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	ImageURL       string `parquet:"name=image_url, type=BYTE_ARRAY, convertedtype=UTF8"`
	Description    string `parquet:"name=description, type=BYTE_ARRAY, convertedtype=UTF8"`
	HasDescription bool   `parquet:"name=has_description, type=BOOLEAN"`
	SyncedAt       int64  `parquet:"name=synced_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
}

func ToSpeciesRow(species domain.Species) SpeciesRow {
	return SpeciesRow{
		ID:             int32(species.ID),
		Name:           species.Name,
		ImageURL:       species.ImageURL,
		Description:    species.Description,
		HasDescription: species.HasDescription,
		SyncedAt:       species.SyncedAt.UnixMilli(),
	}
}
