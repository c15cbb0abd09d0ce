package export

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"pokedex/catalog/internal/domain"

	log "github.com/sirupsen/logrus"
)

type Result struct {
	ParquetKey string `json:"parquetKey"`
	CSVKey     string `json:"csvKey"`
	Rows       int    `json:"rows"`
}

// Exporter writes a Parquet and a CSV snapshot of stored species and
// uploads both under the configured bucket and prefix
type Exporter struct {
	uploader Uploader
	bucket   string
	prefix   string
}

func NewExporter(uploader Uploader, bucket, prefix string) *Exporter {
	return &Exporter{
		uploader: uploader,
		bucket:   bucket,
		prefix:   prefix,
	}
}

// Export returns nil without uploading anything when species is empty
func (e *Exporter) Export(ctx context.Context, species []domain.Species) (*Result, error) {
	if len(species) == 0 {
		return nil, nil
	}
	if e.bucket == "" {
		return nil, fmt.Errorf("export bucket is not configured")
	}

	parquetWriter, err := NewParquetWriter()
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}
	csvWriter := NewCSVWriter()
	if err := csvWriter.WriteHeader(); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, s := range species {
		row := ToSpeciesRow(s)
		if err := parquetWriter.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write species %d to parquet: %w", s.ID, err)
		}
		if err := csvWriter.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write species %d to csv: %w", s.ID, err)
		}
	}

	if err := parquetWriter.Finish(); err != nil {
		return nil, fmt.Errorf("failed to finish parquet file: %w", err)
	}
	if err := csvWriter.Finish(); err != nil {
		return nil, fmt.Errorf("failed to finish csv file: %w", err)
	}

	base := fmt.Sprintf("species_%d_%d", species[0].ID, species[len(species)-1].ID)
	result := &Result{
		ParquetKey: path.Join(e.prefix, base+".parquet"),
		CSVKey:     path.Join(e.prefix, base+".csv"),
		Rows:       len(species),
	}

	log.Infof("📦 Uploading parquet snapshot of %d bytes to s3://%s/%s", len(parquetWriter.Bytes()), e.bucket, result.ParquetKey)
	if err := e.uploader.PutFile(ctx, bytes.NewReader(parquetWriter.Bytes()), e.bucket, result.ParquetKey); err != nil {
		return nil, err
	}

	log.Infof("Uploading csv snapshot of %d bytes to s3://%s/%s", len(csvWriter.Bytes()), e.bucket, result.CSVKey)
	if err := e.uploader.PutFile(ctx, bytes.NewReader(csvWriter.Bytes()), e.bucket, result.CSVKey); err != nil {
		return nil, err
	}

	return result, nil
}
