package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/meshtopo/pkg/buildinfo"
	"github.com/matzehuels/meshtopo/pkg/errors"
	"github.com/matzehuels/meshtopo/pkg/mesh/quality"
	"github.com/matzehuels/meshtopo/pkg/meshio"
	"github.com/matzehuels/meshtopo/pkg/pipeline"
	"github.com/matzehuels/meshtopo/pkg/store"
)

// ProcessRequest is the body of POST /v1/meshes/process. Options not given
// keep the server defaults.
type ProcessRequest struct {
	Document *meshio.Document `json:"document"`
	Options  json.RawMessage  `json:"options,omitempty"`
}

// ProcessResponse is returned for a processed mesh.
type ProcessResponse struct {
	ID        string          `json:"id"`
	InputHash string          `json:"input_hash"`
	Cached    bool            `json:"cached"`
	Report    pipeline.Report `json:"report"`
}

// MeshSummary is one entry of GET /v1/meshes.
type MeshSummary struct {
	ID        string          `json:"id"`
	Name      string          `json:"name,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Stats     quality.Summary `json:"stats"`
}

type ctxKey int

const recordKey ctxKey = 0

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := decodeJSON(w, r, s.maxBody, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Document == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "request has no document"))
		return
	}

	opts := s.defaults
	if len(req.Options) > 0 {
		if err := json.Unmarshal(req.Options, &opts); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode options"))
			return
		}
	}
	opts.Logger = s.logger.With("request_id", middleware.GetReqID(r.Context()))

	res, err := s.runner.ProcessDocument(r.Context(), req.Document, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := s.store.Put(r.Context(), &store.Record{
		Name:      req.Document.Name,
		InputHash: res.InputHash,
		CacheKey:  res.ResultKey,
		Input:     req.Document,
		Output:    res.Output,
		Stats:     res.Report.Quality,
	})
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeStorage, err, "store mesh"))
		return
	}

	writeJSON(w, http.StatusCreated, ProcessResponse{
		ID:        id,
		InputHash: res.InputHash,
		Cached:    res.CacheInfo.ResultHit,
		Report:    res.Report,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	records, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeStorage, err, "list meshes"))
		return
	}
	out := make([]MeshSummary, len(records))
	for i, rec := range records {
		out[i] = MeshSummary{ID: rec.ID, Name: rec.Name, CreatedAt: rec.CreatedAt, Stats: rec.Stats}
	}
	writeJSON(w, http.StatusOK, map[string]any{"meshes": out})
}

// meshID validates the {id} parameter and loads the record.
func (s *Server) meshID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := errors.ValidateMeshID(id); err != nil {
			s.writeError(w, r, err)
			return
		}
		rec, err := s.store.Get(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), recordKey, rec)))
	})
}

func recordFrom(ctx context.Context) *store.Record {
	rec, _ := ctx.Value(recordKey).(*store.Record)
	return rec
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, recordFrom(r.Context()))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), recordFrom(r.Context()).ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	opts := s.defaults
	opts.Formats = []string{format}
	q := r.URL.Query()
	if v := q.Get("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid width %q", v))
			return
		}
		opts.Width = n
	}
	if v := q.Get("labels"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid labels %q", v))
			return
		}
		opts.Labels = b
	}
	opts.Logger = s.logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}

	rec := recordFrom(r.Context())
	m, err := meshio.Import(rec.Output)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeMeshCorrupt, err, "stored mesh %s", rec.ID))
		return
	}
	res := &pipeline.Result{Mesh: m, Output: rec.Output, InputHash: rec.InputHash, ResultKey: rec.CacheKey}
	artifacts, _, err := s.runner.RenderWithCacheInfo(r.Context(), res, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	w.Write(artifacts[format])
}

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
}

// =============================================================================
// Encoding
// =============================================================================

func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "request body exceeds %d bytes", limit)
		}
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
