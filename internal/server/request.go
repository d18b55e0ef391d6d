package server

import (
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/rgehrsitz/fincast/internal/config"
	"github.com/rgehrsitz/fincast/internal/domain"
	"github.com/rgehrsitz/fincast/internal/output"
)

const maxBodyBytes = 1 << 20

// readConfiguration decodes a request body. Two shapes are accepted: a full
// configuration document with base_parameters, and a bare parameter set,
// optionally with an engine key, which is run without transitions.
func (s *Server) readConfiguration(w http.ResponseWriter, r *http.Request) (*config.File, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if _, ok := keys["base_parameters"]; ok {
		return s.parser.Parse(body, config.FormatJSON)
	}

	var file config.File
	if err := json.Unmarshal(body, &file.BaseParameters); err != nil {
		return nil, fmt.Errorf("failed to parse parameters: %w", err)
	}
	if raw, ok := keys["engine"]; ok {
		if err := json.Unmarshal(raw, &file.Engine); err != nil {
			return nil, fmt.Errorf("failed to parse engine options: %w", err)
		}
	}
	if raw, ok := keys["name"]; ok {
		_ = json.Unmarshal(raw, &file.Name)
	}
	if err := s.parser.ValidateConfiguration(&file.SimulationConfiguration); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := file.Engine.Validate(); err != nil {
		return nil, fmt.Errorf("engine options validation failed: %w", err)
	}
	return &file, nil
}

// simulateResponse is the body returned for a projection
type simulateResponse struct {
	ConfigurationID string                           `json:"configurationId,omitempty"`
	RunID           string                           `json:"runId,omitempty"`
	Summary         output.Summary                   `json:"summary"`
	Warnings        []string                         `json:"configurationWarnings,omitempty"`
	Result          *domain.EnhancedSimulationResult `json:"result"`
}
