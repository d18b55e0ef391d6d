package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/rgehrsitz/fincast/internal/calculation"
	"github.com/rgehrsitz/fincast/internal/compare"
	"github.com/rgehrsitz/fincast/internal/config"
	"github.com/rgehrsitz/fincast/internal/output"
	"github.com/rgehrsitz/fincast/internal/store"
	"github.com/rgehrsitz/fincast/pkg/logger"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"service": "fincast",
		"storage": s.store != nil,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	file, err := s.readConfiguration(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":       true,
		"transitions": len(file.Transitions),
		"warnings":    config.Warnings(&file.SimulationConfiguration),
	})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	file, err := s.readConfiguration(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.simulate(r.Context(), file)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if s.store != nil && r.URL.Query().Get("save") == "true" {
		if resp.ConfigurationID, err = s.store.SaveConfiguration(r.Context(), file); err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if resp.RunID, err = s.store.SaveSimulationRun(r.Context(), resp.ConfigurationID, resp.Result); err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	file, err := s.readConfiguration(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	compSet, err := compare.NewCompareEngine(s.engineFor(file)).Compare(r.Context(), &file.SimulationConfiguration)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, compSet)
}

func (s *Server) handleListConfigurations(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListConfigurations(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []store.ConfigurationRecord{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleSaveConfiguration(w http.ResponseWriter, r *http.Request) {
	file, err := s.readConfiguration(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.store.SaveConfiguration(r.Context(), file)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleGetConfiguration(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetConfiguration(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteConfiguration(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteConfiguration(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.GetConfiguration(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	runs, err := s.store.ListRuns(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []store.RunRecord{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRunStoredSimulation(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetConfiguration(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	resp, err := s.simulate(r.Context(), rec.File)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp.ConfigurationID = rec.ID
	if resp.RunID, err = s.store.SaveSimulationRun(r.Context(), rec.ID, resp.Result); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRunStoredComparison(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetConfiguration(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	compSet, err := compare.NewCompareEngine(s.engineFor(rec.File)).Compare(r.Context(), &rec.File.SimulationConfiguration)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	runID, err := s.store.SaveComparisonRun(r.Context(), rec.ID, compSet.Result)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"configurationId": rec.ID,
		"runId":           runID,
		"comparison":      compSet,
	})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	var result interface{}
	switch rec.Kind {
	case store.RunComparison:
		result, err = rec.ComparisonResult()
	default:
		result, err = rec.SimulationResult()
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run":    rec,
		"result": result,
	})
}

// simulate runs the configuration with transitions applied
func (s *Server) simulate(ctx context.Context, file *config.File) (*simulateResponse, error) {
	result, err := s.engineFor(file).RunSimulationWithTransitions(ctx, &file.SimulationConfiguration)
	if err != nil {
		return nil, err
	}
	return &simulateResponse{
		Summary:  output.Summarize(&result.SimulationResult),
		Warnings: config.Warnings(&file.SimulationConfiguration),
		Result:   result,
	}, nil
}

func (s *Server) engineFor(file *config.File) *calculation.Engine {
	engine := file.Engine.BuildEngine()
	engine.SetLogger(logger.NewEngineLogger(s.log))
	return engine
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeError(w, http.StatusInternalServerError, err.Error())
}
