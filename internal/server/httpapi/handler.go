// Package httpapi serves the PocketBase-compatible records API of the
// record store:
//
//	GET    /api/health
//	GET    /api/collections/{collection}/records?page=&perPage=&skipTotal=
//	POST   /api/collections/{collection}/records
//	GET    /api/collections/{collection}/records/{id}
//	PATCH  /api/collections/{collection}/records/{id}
//	DELETE /api/collections/{collection}/records/{id}
//
// Responses and errors use the PocketBase JSON shapes so the editor's
// record store client can talk to either backend.
package httpapi

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/xtbe/arcbp-editor/internal/common"
	"github.com/xtbe/arcbp-editor/internal/logging"
	"github.com/xtbe/arcbp-editor/internal/models"
	"github.com/xtbe/arcbp-editor/internal/server/httpmw"
	"github.com/xtbe/arcbp-editor/internal/server/store"
)

const (
	DefaultPerPage    = 30
	DefaultMaxPerPage = 1000
)

type Options struct {
	Collection string
	MaxPerPage int
}

type Handler struct {
	repo         store.Repository
	collection   string
	collectionID string
	maxPerPage   int
	log          logging.Logger
}

func NewHandler(repo store.Repository, opts Options, log logging.Logger) *Handler {
	if opts.MaxPerPage <= 0 {
		opts.MaxPerPage = DefaultMaxPerPage
	}
	return &Handler{
		repo:         repo,
		collection:   opts.Collection,
		collectionID: collectionID(opts.Collection),
		maxPerPage:   opts.MaxPerPage,
		log:          log.With("module", "httpapi"),
	}
}

// collectionID derives a stable id from the collection name.
func collectionID(name string) string {
	return "pbc_" + strings.ReplaceAll(uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String(), "-", "")[:10]
}

// Routes returns the API with middleware applied.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.health)
	mux.HandleFunc("GET /api/collections/{collection}/records", h.list)
	mux.HandleFunc("POST /api/collections/{collection}/records", h.create)
	mux.HandleFunc("GET /api/collections/{collection}/records/{id}", h.view)
	mux.HandleFunc("PATCH /api/collections/{collection}/records/{id}", h.update)
	mux.HandleFunc("DELETE /api/collections/{collection}/records/{id}", h.delete)

	return httpmw.Chain(mux,
		httpmw.WithRequestID,
		httpmw.WithRecover(h.log),
		httpmw.WithAccessLog(h.log),
	)
}

type recordView struct {
	CollectionID   string `json:"collectionId"`
	CollectionName string `json:"collectionName"`
	store.Record
}

type listResponse struct {
	Page       int          `json:"page"`
	PerPage    int          `json:"perPage"`
	TotalItems int          `json:"totalItems"`
	TotalPages int          `json:"totalPages"`
	Items      []recordView `json:"items"`
}

type fieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Status  int                   `json:"status"`
	Message string                `json:"message"`
	Data    map[string]fieldError `json:"data"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Status: code, Message: msg, Data: map[string]fieldError{}})
}

func (h *Handler) view(w http.ResponseWriter, r *http.Request) {
	if !h.collectionOK(w, r) {
		return
	}
	rec, err := h.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, h.render(rec))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"code":    http.StatusOK,
		"message": "API is healthy.",
		"data":    map[string]any{},
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	if !h.collectionOK(w, r) {
		return
	}

	q := r.URL.Query()
	page := positiveInt(q.Get("page"), 1)
	perPage := positiveInt(q.Get("perPage"), DefaultPerPage)
	if perPage > h.maxPerPage {
		perPage = h.maxPerPage
	}
	// Keep the offset below overflow; such a page is past any collection.
	page = min(page, math.MaxInt/perPage)

	recs, err := h.repo.List(r.Context(), (page-1)*perPage, perPage)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}

	resp := listResponse{
		Page:       page,
		PerPage:    perPage,
		TotalItems: -1,
		TotalPages: -1,
		Items:      make([]recordView, 0, len(recs)),
	}
	for _, rec := range recs {
		resp.Items = append(resp.Items, h.render(rec))
	}

	if !truthy(q.Get("skipTotal")) {
		n, err := h.repo.Count(r.Context())
		if err != nil {
			h.fail(w, r, err, "")
			return
		}
		resp.TotalItems = n
		resp.TotalPages = (n + perPage - 1) / perPage
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if !h.collectionOK(w, r) {
		return
	}

	var in models.Blueprint
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, http.StatusBadRequest, "Failed to load the submitted data due to invalid formatting.")
		return
	}

	rec, err := h.repo.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err, "Failed to create record.")
		return
	}
	writeJSON(w, http.StatusOK, h.render(rec))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	if !h.collectionOK(w, r) {
		return
	}

	var patch models.BlueprintPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeErr(w, http.StatusBadRequest, "Failed to load the submitted data due to invalid formatting.")
		return
	}

	rec, err := h.repo.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		h.fail(w, r, err, "Failed to update record.")
		return
	}
	writeJSON(w, http.StatusOK, h.render(rec))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if !h.collectionOK(w, r) {
		return
	}

	if err := h.repo.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) collectionOK(w http.ResponseWriter, r *http.Request) bool {
	if r.PathValue("collection") == h.collection {
		return true
	}
	writeErr(w, http.StatusNotFound, "Missing collection context.")
	return false
}

func (h *Handler) render(rec store.Record) recordView {
	return recordView{CollectionID: h.collectionID, CollectionName: h.collection, Record: rec}
}

// fail maps repository errors to PocketBase error responses.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, badRequestMsg string) {
	var fe *store.FieldError
	switch {
	case errors.As(err, &fe):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Status:  http.StatusBadRequest,
			Message: badRequestMsg,
			Data:    map[string]fieldError{fe.Field: {Code: fe.Code, Message: fe.Message}},
		})
	case errors.Is(err, common.ErrNotFound):
		writeErr(w, http.StatusNotFound, "The requested resource wasn't found.")
	default:
		h.log.Error(r.Context(), "request failed",
			"request_id", httpmw.RequestIDFromContext(r.Context()),
			"error", err,
		)
		writeErr(w, http.StatusInternalServerError, "Something went wrong while processing your request.")
	}
}

func positiveInt(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func truthy(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}
