package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rgehrsitz/fincast/internal/domain"
	"github.com/vmihailenco/msgpack/v5"
)

// RunKind says which result type a run holds
type RunKind string

const (
	RunSimulation RunKind = "simulation"
	RunComparison RunKind = "comparison"
)

// RunRecord is a stored result. The result itself stays encoded until
// SimulationResult or ComparisonResult is called.
type RunRecord struct {
	ID              string    `json:"id"`
	ConfigurationID string    `json:"configurationId"`
	Kind            RunKind   `json:"kind"`
	CreatedAt       time.Time `json:"createdAt"`
	Size            int       `json:"size"`

	blob []byte
}

// SaveSimulationRun stores a projection result against a configuration
func (s *Store) SaveSimulationRun(ctx context.Context, configurationID string, result *domain.EnhancedSimulationResult) (string, error) {
	return s.saveRun(ctx, configurationID, RunSimulation, result)
}

// SaveComparisonRun stores a comparison result against a configuration
func (s *Store) SaveComparisonRun(ctx context.Context, configurationID string, result *domain.ComparisonResult) (string, error) {
	return s.saveRun(ctx, configurationID, RunComparison, result)
}

func (s *Store) saveRun(ctx context.Context, configurationID string, kind RunKind, result any) (string, error) {
	blob, err := msgpack.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s result: %w", kind, err)
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, configuration_id, kind, result, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, configurationID, string(kind), blob, s.timestamp())
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	s.log.Info().
		Str("id", id).
		Str("configuration_id", configurationID).
		Str("kind", string(kind)).
		Int("bytes", len(blob)).
		Msg("Saved run")
	return id, nil
}

// GetRun loads a run by id
func (s *Store) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	var (
		rec     RunRecord
		kind    string
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, configuration_id, kind, result, created_at FROM runs WHERE id = ?`, id).
		Scan(&rec.ID, &rec.ConfigurationID, &kind, &rec.blob, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	rec.Kind = RunKind(kind)
	rec.CreatedAt = time.Unix(0, created).UTC()
	rec.Size = len(rec.blob)
	return &rec, nil
}

// ListRuns returns the runs of a configuration, oldest first, without their
// results
func (s *Store) ListRuns(ctx context.Context, configurationID string) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, configuration_id, kind, length(result), created_at FROM runs
		 WHERE configuration_id = ? ORDER BY created_at, rowid`, configurationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var (
			rec     RunRecord
			kind    string
			created int64
		)
		if err := rows.Scan(&rec.ID, &rec.ConfigurationID, &kind, &rec.Size, &created); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rec.Kind = RunKind(kind)
		rec.CreatedAt = time.Unix(0, created).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SimulationResult decodes a simulation run
func (r *RunRecord) SimulationResult() (*domain.EnhancedSimulationResult, error) {
	if r.Kind != RunSimulation {
		return nil, fmt.Errorf("run %s holds a %s result", r.ID, r.Kind)
	}
	var result domain.EnhancedSimulationResult
	if err := r.decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ComparisonResult decodes a comparison run
func (r *RunRecord) ComparisonResult() (*domain.ComparisonResult, error) {
	if r.Kind != RunComparison {
		return nil, fmt.Errorf("run %s holds a %s result", r.ID, r.Kind)
	}
	var result domain.ComparisonResult
	if err := r.decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *RunRecord) decode(v any) error {
	if len(r.blob) == 0 {
		return fmt.Errorf("run %s has no result loaded", r.ID)
	}
	if err := msgpack.Unmarshal(r.blob, v); err != nil {
		return fmt.Errorf("failed to decode run %s: %w", r.ID, err)
	}
	return nil
}
