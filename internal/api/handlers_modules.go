package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"github.com/studylink/cnxgest/internal/chunker"
	"github.com/studylink/cnxgest/internal/cnxml"
	"github.com/studylink/cnxgest/internal/library"
	"github.com/studylink/cnxgest/internal/textbook"
)

// handleStructure returns the chapter/section/module hierarchy.
func (s *Server) handleStructure(w http.ResponseWriter, r *http.Request) {
	structure, err := s.svc.Structure()
	if err != nil {
		jsonError(w, "failed to load structure: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"structure": structure})
}

// handleModule returns one fully parsed module.
func (s *Server) handleModule(w http.ResponseWriter, r *http.Request) {
	m, ok := s.loadModule(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m)
}

// handleModuleText returns just the flattened textual projection.
func (s *Server) handleModuleText(w http.ResponseWriter, r *http.Request) {
	m, ok := s.loadModule(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"module_id": m.ID,
		"title":     m.Title,
		"all_text":  m.AllText,
	})
}

// handleModuleChunks returns retrieval-ready chunks for one module.
func (s *Server) handleModuleChunks(w http.ResponseWriter, r *http.Request) {
	m, ok := s.loadModule(w, r)
	if !ok {
		return
	}

	cfg := chunker.Config{
		ChunkSize:    s.cfg.DefaultChunkSize,
		ChunkOverlap: s.cfg.DefaultChunkOverlap,
		MinChunk:     1,
	}
	if v := r.URL.Query().Get("chunk_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChunkSize = n
		}
	}
	if v := r.URL.Query().Get("overlap"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChunkOverlap = n
		}
	}

	chunks := chunker.ChunkModule(m, cfg)
	payload := lo.Map(chunks, func(c chunker.Chunk, _ int) map[string]any {
		return map[string]any{
			"text":         c.Text,
			"index":        c.Index,
			"breadcrumb":   c.Breadcrumb,
			"module_id":    c.ModuleID,
			"module_title": c.ModuleTitle,
		}
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"module_id": m.ID,
		"chunks":    payload,
	})
}

// handleSearch scans module titles and flattened text for a substring.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		jsonError(w, "q query parameter is required", http.StatusBadRequest)
		return
	}

	results, err := s.svc.Search(query)
	if err != nil {
		jsonError(w, "search failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []textbook.SearchResult{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"query":   query,
		"results": results,
	})
}

// loadModule resolves the moduleID path parameter. NotFound maps to
// 404, structural/parse failures to 422; a failed module never yields a
// partial body.
func (s *Server) loadModule(w http.ResponseWriter, r *http.Request) (*cnxml.Module, bool) {
	moduleID := chi.URLParam(r, "moduleID")
	m, err := s.svc.GetModule(moduleID)
	if err != nil {
		var structural *cnxml.StructuralError
		switch {
		case errors.Is(err, library.ErrNotFound):
			jsonError(w, "module not found: "+moduleID, http.StatusNotFound)
		case errors.As(err, &structural):
			jsonError(w, "could not parse module "+moduleID+": "+structural.Reason, http.StatusUnprocessableEntity)
		default:
			jsonError(w, "could not parse module "+moduleID+": "+err.Error(), http.StatusUnprocessableEntity)
		}
		return nil, false
	}
	return m, true
}
