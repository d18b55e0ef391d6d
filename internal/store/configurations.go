package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rgehrsitz/fincast/internal/config"
)

// ConfigurationRecord is a stored configuration document
type ConfigurationRecord struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	CreatedAt time.Time    `json:"createdAt"`
	File      *config.File `json:"configuration,omitempty"`
}

// SaveConfiguration stores file under a new id and returns the id
func (s *Store) SaveConfiguration(ctx context.Context, file *config.File) (string, error) {
	if file == nil {
		return "", fmt.Errorf("configuration is required")
	}
	body, err := json.Marshal(file)
	if err != nil {
		return "", fmt.Errorf("failed to marshal configuration: %w", err)
	}

	id := uuid.New().String()
	name := file.Name
	if name == "" {
		name = "untitled"
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO configurations (id, name, body, created_at) VALUES (?, ?, ?, ?)`,
		id, name, string(body), s.timestamp())
	if err != nil {
		return "", fmt.Errorf("failed to insert configuration: %w", err)
	}

	s.log.Info().
		Str("id", id).
		Str("name", name).
		Int("transitions", len(file.Transitions)).
		Msg("Saved configuration")
	return id, nil
}

// GetConfiguration loads a configuration by id
func (s *Store) GetConfiguration(ctx context.Context, id string) (*ConfigurationRecord, error) {
	var (
		rec     ConfigurationRecord
		body    string
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, body, created_at FROM configurations WHERE id = ?`, id).
		Scan(&rec.ID, &rec.Name, &body, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("configuration %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query configuration: %w", err)
	}

	var file config.File
	if err := json.Unmarshal([]byte(body), &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration %s: %w", id, err)
	}
	rec.File = &file
	rec.CreatedAt = time.Unix(0, created).UTC()
	return &rec, nil
}

// ListConfigurations returns every stored configuration, oldest first,
// without the document body
func (s *Store) ListConfigurations(ctx context.Context) ([]ConfigurationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM configurations ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query configurations: %w", err)
	}
	defer rows.Close()

	var records []ConfigurationRecord
	for rows.Next() {
		var (
			rec     ConfigurationRecord
			created int64
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &created); err != nil {
			return nil, fmt.Errorf("failed to scan configuration: %w", err)
		}
		rec.CreatedAt = time.Unix(0, created).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteConfiguration removes a configuration and its runs
func (s *Store) DeleteConfiguration(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM configurations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete configuration: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("configuration %s: %w", id, ErrNotFound)
	}
	s.log.Info().Str("id", id).Msg("Deleted configuration")
	return nil
}
