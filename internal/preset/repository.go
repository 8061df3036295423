package preset

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Repository defines persistence operations for custom presets.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// List retrieves all stored custom presets.
	List(ctx context.Context) ([]Preset, error)

	// Save inserts or replaces a custom preset by name.
	Save(ctx context.Context, p Preset) error

	// Delete removes a stored preset by name.
	// Returns ErrNotFound if no preset with that name is stored.
	Delete(ctx context.Context, name string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// List retrieves all stored custom presets ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Preset, error) {
	query := `
		SELECT name, description, values_json
		FROM presets
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying presets: %w", err)
	}
	defer rows.Close()

	var presets []Preset
	for rows.Next() {
		var p Preset
		var valuesJSON string
		if err := rows.Scan(&p.Name, &p.Description, &valuesJSON); err != nil {
			return nil, fmt.Errorf("scanning preset row: %w", err)
		}
		if err := json.Unmarshal([]byte(valuesJSON), &p.Values); err != nil {
			return nil, fmt.Errorf("unmarshalling preset %q values: %w", p.Name, err)
		}
		presets = append(presets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating preset rows: %w", err)
	}
	return presets, nil
}

// Save inserts or replaces a custom preset by name.
func (r *SQLiteRepository) Save(ctx context.Context, p Preset) error {
	valuesJSON, err := json.Marshal(p.Values)
	if err != nil {
		return fmt.Errorf("marshalling preset %q values: %w", p.Name, err)
	}

	query := `
		INSERT INTO presets (name, description, values_json, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			description = excluded.description,
			values_json = excluded.values_json,
			updated_at = excluded.updated_at`

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := r.db.ExecContext(ctx, query, p.Name, p.Description, string(valuesJSON), now); err != nil {
		return fmt.Errorf("saving preset %q: %w", p.Name, err)
	}
	return nil
}

// Delete removes a stored preset by name.
func (r *SQLiteRepository) Delete(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM presets WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting preset %q: %w", name, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return nil
}

// LoadCustom merges all stored presets from repo into lib. Presets that fail
// validation or clash with a builtin are skipped and reported through the
// returned slice rather than aborting startup.
func LoadCustom(ctx context.Context, repo Repository, lib *Library) ([]error, error) {
	stored, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var skipped []error
	for _, p := range stored {
		if err := lib.Merge(p); err != nil {
			if errors.Is(err, ErrInvalidName) || errors.Is(err, ErrBuiltinPreset) {
				skipped = append(skipped, err)
				continue
			}
			return skipped, err
		}
	}
	return skipped, nil
}
