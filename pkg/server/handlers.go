package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ha1tch/drugref/pkg/config"
	"github.com/ha1tch/drugref/pkg/graph"
	"github.com/ha1tch/drugref/pkg/models"
)

const (
	graphKeyPrefix   = "graph:"
	journalKeyPrefix = "journals:"
	maxPerPage       = 500
)

var (
	errBadRequest = errors.New("bad request")
	errNotFound   = errors.New("not found")
)

// nodeDetail is a node together with the edges touching it
type nodeDetail struct {
	Node     models.Node   `json:"node"`
	Outgoing []models.Edge `json:"outgoing"`
	Incoming []models.Edge `json:"incoming"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": config.Version,
	})
}

// handleVersion returns server version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"version": config.Version,
	})
}

// handleElements returns the graph as an element list
func (s *Server) handleElements(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, graphKeyPrefix+"elements", func(g *models.Graph) (interface{}, error) {
		return graph.Elements(g), nil
	})
}

// handleStats returns node and edge counts
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, graphKeyPrefix+"stats", func(g *models.Graph) (interface{}, error) {
		return graph.Stats(g), nil
	})
}

// handleNodes lists nodes, optionally filtered by type
func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	page, perPage := s.pagination(r)
	nodeType := models.NodeType(r.URL.Query().Get("type"))

	key := fmt.Sprintf("%snodes:%s:%d:%d", graphKeyPrefix, nodeType, page, perPage)
	s.serveCached(w, r, key, func(g *models.Graph) (interface{}, error) {
		if nodeType != "" && !nodeType.Valid() {
			return nil, fmt.Errorf("%w: unknown node type %q", errBadRequest, nodeType)
		}

		nodes := make([]models.Node, 0, len(g.Nodes))
		for _, n := range g.Nodes {
			if nodeType == "" || n.Type == nodeType {
				nodes = append(nodes, n)
			}
		}
		return paginate(nodes, page, perPage), nil
	})
}

// handleNode returns one node with its edges
func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id < 0 {
		s.writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	key := fmt.Sprintf("%snode:%d", graphKeyPrefix, id)
	s.serveCached(w, r, key, func(g *models.Graph) (interface{}, error) {
		node, ok := g.NodeByID(id)
		if !ok {
			return nil, fmt.Errorf("%w: node %d", errNotFound, id)
		}

		detail := nodeDetail{Node: node, Outgoing: []models.Edge{}, Incoming: []models.Edge{}}
		for _, e := range g.Edges {
			if e.Source == id {
				detail.Outgoing = append(detail.Outgoing, e)
			}
			if e.Target == id {
				detail.Incoming = append(detail.Incoming, e)
			}
		}
		return detail, nil
	})
}

// handleEdges lists edges in creation order
func (s *Server) handleEdges(w http.ResponseWriter, r *http.Request) {
	page, perPage := s.pagination(r)

	key := fmt.Sprintf("%sedges:%d:%d", graphKeyPrefix, page, perPage)
	s.serveCached(w, r, key, func(g *models.Graph) (interface{}, error) {
		return paginate(g.Edges, page, perPage), nil
	})
}

// handleJournals returns the reference count of every journal
func (s *Server) handleJournals(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, journalKeyPrefix+"all", func(g *models.Graph) (interface{}, error) {
		stats := graph.JournalReferenceCounts(g.Nodes, g.Edges)
		if stats == nil {
			stats = []models.JournalStat{}
		}
		return stats, nil
	})
}

// handleTopJournal returns the journal referencing the most drugs
func (s *Server) handleTopJournal(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, journalKeyPrefix+"top", func(g *models.Graph) (interface{}, error) {
		return graph.MostReferencingJournal(g.Nodes, g.Edges)
	})
}

// serveCached writes the cached response for key, computing and caching it
// on a miss
func (s *Server) serveCached(w http.ResponseWriter, r *http.Request, key string, build func(*models.Graph) (interface{}, error)) {
	ctx := r.Context()

	if cached, err := s.cache.Get(ctx, key); err == nil {
		s.writeRaw(w, http.StatusOK, cached)
		return
	}

	value, err := build(s.currentGraph())
	if err != nil {
		switch {
		case errors.Is(err, errBadRequest):
			s.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, errNotFound), errors.Is(err, graph.ErrEmptyInput):
			s.writeError(w, http.StatusNotFound, err.Error())
		default:
			s.logger.Error().Err(err).Str("key", key).Msg("Failed to build response")
			s.writeError(w, http.StatusInternalServerError, "Internal error")
		}
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to encode response")
		s.writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	if err := s.cache.Set(ctx, key, data); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache response")
	}

	s.writeRaw(w, http.StatusOK, data)
}

// pagination reads page and per_page query parameters
func (s *Server) pagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > maxPerPage {
		perPage = s.config.DefaultPageSize
		if perPage < 1 {
			perPage = 50
		}
	}
	return page, perPage
}

func paginate[T any](items []T, page, perPage int) models.PagedResponse {
	totalItems := len(items)
	totalPages := (totalItems + perPage - 1) / perPage

	start := (page - 1) * perPage
	end := start + perPage
	if end > totalItems {
		end = totalItems
	}

	pageData := []T{}
	if start < totalItems {
		pageData = items[start:end]
	}

	response := models.PagedResponse{Data: pageData}
	response.Pagination.Page = page
	response.Pagination.PerPage = perPage
	response.Pagination.TotalItems = totalItems
	response.Pagination.TotalPages = totalPages
	return response
}

func (s *Server) writeRaw(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, models.ErrorResponse{
		Error: struct {
			Message string `json:"message"`
			Status  int    `json:"status"`
		}{
			Message: message,
			Status:  status,
		},
	})
}
