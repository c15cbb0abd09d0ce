package repository

import (
	"context"
	"errors"
	"fmt"

	"pokedex/catalog/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("species not found")

type SpeciesRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveSpecies(ctx context.Context, species *domain.Species) error
	GetSpecies(ctx context.Context, id int) (*domain.Species, error)
	ListSpecies(ctx context.Context) ([]domain.Species, error)
}

// DB is the part of *pgxpool.Pool the repository uses
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ DB = (*pgxpool.Pool)(nil)

type speciesRepository struct {
	db DB
}

func NewSpeciesRepository(db DB) SpeciesRepository {
	return &speciesRepository{
		db: db,
	}
}

func (r *speciesRepository) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS species (
		id              INTEGER PRIMARY KEY,
		name            TEXT NOT NULL,
		image_url       TEXT NOT NULL,
		description     TEXT,
		has_description BOOLEAN NOT NULL DEFAULT FALSE,
		synced_at       TIMESTAMPTZ NOT NULL
	)`
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create species table: %w", err)
	}
	return nil
}

func (r *speciesRepository) SaveSpecies(ctx context.Context, species *domain.Species) error {
	query := `
	INSERT INTO species (id, name, image_url, description, has_description, synced_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id)
	DO UPDATE SET name = $2, image_url = $3, description = $4, has_description = $5, synced_at = $6`

	var description *string
	if species.HasDescription {
		description = &species.Description
	}

	_, err := r.db.Exec(ctx, query,
		species.ID, species.Name, species.ImageURL, description, species.HasDescription, species.SyncedAt)
	if err != nil {
		return fmt.Errorf("failed to save species %d: %w", species.ID, err)
	}

	return nil
}

func (r *speciesRepository) GetSpecies(ctx context.Context, id int) (*domain.Species, error) {
	query := `
	SELECT id, name, image_url, description, has_description, synced_at
	FROM species WHERE id = $1`

	species, err := scanSpecies(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get species %d: %w", id, err)
	}

	return species, nil
}

func (r *speciesRepository) ListSpecies(ctx context.Context) ([]domain.Species, error) {
	query := `
	SELECT id, name, image_url, description, has_description, synced_at
	FROM species ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list species: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Species, 0)
	for rows.Next() {
		species, err := scanSpecies(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan species: %w", err)
		}
		result = append(result, *species)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list species: %w", err)
	}

	return result, nil
}

func scanSpecies(row pgx.Row) (*domain.Species, error) {
	var (
		species     domain.Species
		description *string
	)
	err := row.Scan(&species.ID, &species.Name, &species.ImageURL, &description, &species.HasDescription, &species.SyncedAt)
	if err != nil {
		return nil, err
	}
	if description != nil {
		species.Description = *description
	}
	return &species, nil
}
