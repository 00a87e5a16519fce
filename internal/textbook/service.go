// Package textbook is the service facade over the book bundle: it
// loads, parses and caches modules, and answers structure, search and
// stats queries for the API and the corpus pipeline.
package textbook

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/studylink/cnxgest/internal/cache"
	"github.com/studylink/cnxgest/internal/cnxml"
	"github.com/studylink/cnxgest/internal/collection"
	"github.com/studylink/cnxgest/internal/library"
)

// Service coordinates the loader, the extractor and the cache. Parsing
// itself is pure, so Service methods are safe to call concurrently for
// different module ids.
type Service struct {
	lib   *library.Library
	cache *cache.Cache // nil when caching is disabled
	log   *slog.Logger
	stats *ParseStats

	mu        sync.Mutex
	structure *collection.Structure
	modules   map[string]*cnxml.Module
}

func NewService(lib *library.Library, c *cache.Cache, log *slog.Logger) *Service {
	return &Service{
		lib:     lib,
		cache:   c,
		log:     log,
		stats:   NewParseStats(time.Hour),
		modules: make(map[string]*cnxml.Module),
	}
}

// GetModule returns the parsed module for id, consulting the in-memory
// memo and the disk cache before parsing. Errors pass through
// library.ErrNotFound unchanged so callers can map it to "does not
// exist" rather than "parse failure".
func (s *Service) GetModule(id string) (*cnxml.Module, error) {
	s.mu.Lock()
	if m, ok := s.modules[id]; ok {
		s.mu.Unlock()
		return m, nil
	}
	s.mu.Unlock()

	if m, err := s.cache.GetModule(id); err != nil {
		s.log.Warn("cache read failed, re-parsing", "module_id", id, "error", err)
	} else if m != nil {
		s.remember(m)
		return m, nil
	}

	doc, err := s.lib.Load(id)
	if err != nil {
		s.stats.RecordFailure()
		return nil, err
	}

	start := time.Now()
	m, err := cnxml.ParseModule(doc, id)
	if err != nil {
		s.stats.RecordFailure()
		return nil, fmt.Errorf("module %s: %w", id, err)
	}
	s.stats.RecordParse(time.Since(start))

	if err := s.cache.PutModule(m); err != nil {
		s.log.Warn("cache write failed", "module_id", id, "error", err)
	}
	s.remember(m)
	return m, nil
}

func (s *Service) remember(m *cnxml.Module) {
	s.mu.Lock()
	s.modules[m.ID] = m
	s.mu.Unlock()
}

// Structure returns the book hierarchy, memoized for the process
// lifetime and mirrored to the disk cache.
func (s *Service) Structure() (*collection.Structure, error) {
	s.mu.Lock()
	if s.structure != nil {
		st := s.structure
		s.mu.Unlock()
		return st, nil
	}
	s.mu.Unlock()

	if st, err := s.cache.GetStructure(); err != nil {
		s.log.Warn("structure cache read failed", "error", err)
	} else if st != nil {
		s.mu.Lock()
		s.structure = st
		s.mu.Unlock()
		return st, nil
	}

	st, err := s.lib.Structure()
	if err != nil {
		return nil, err
	}
	if err := s.cache.PutStructure(st); err != nil {
		s.log.Warn("structure cache write failed", "error", err)
	}

	s.mu.Lock()
	s.structure = st
	s.mu.Unlock()
	return st, nil
}

// ModuleIDs lists every module id in the book, in reading order.
func (s *Service) ModuleIDs() ([]string, error) {
	st, err := s.Structure()
	if err != nil {
		return nil, err
	}
	return st.ModuleIDs(), nil
}

// SearchResult is one module matching a search query.
type SearchResult struct {
	ModuleID string `json:"module_id"`
	Title    string `json:"title"`
}

// Search does a case-insensitive substring scan over module titles and
// flattened text. Modules that fail to parse are skipped, never fatal.
func (s *Service) Search(query string) ([]SearchResult, error) {
	ids, err := s.ModuleIDs()
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	var results []SearchResult
	for _, id := range ids {
		m, err := s.GetModule(id)
		if err != nil {
			s.log.Debug("skipping module during search", "module_id", id, "error", err)
			continue
		}
		if strings.Contains(strings.ToLower(m.Title), q) ||
			strings.Contains(strings.ToLower(m.AllText), q) {
			results = append(results, SearchResult{ModuleID: m.ID, Title: m.Title})
		}
	}
	return results, nil
}

// Stats summarizes the corpus and recent parser behavior.
type Stats struct {
	Title         string          `json:"title"`
	TotalChapters int             `json:"total_chapters"`
	TotalModules  int             `json:"total_modules"`
	CachedModules int             `json:"cached_modules"`
	LoadedModules int             `json:"loaded_modules"`
	ParseLatency  LatencySnapshot `json:"parse_latency"`
}

func (s *Service) Stats() (Stats, error) {
	st, err := s.Structure()
	if err != nil {
		return Stats{}, err
	}

	s.mu.Lock()
	loaded := len(s.modules)
	s.mu.Unlock()

	return Stats{
		Title:         st.Title,
		TotalChapters: len(st.Chapters),
		TotalModules:  st.CountModules(),
		CachedModules: s.cache.ModuleCount(),
		LoadedModules: loaded,
		ParseLatency:  s.stats.Snapshot(),
	}, nil
}
