package bookservice

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"readinglist/internal/books"
)

// BooksPath is the collection route.
const BooksPath = "/reading-list/books"

const (
	msgInvalidStatus = "Status is invalid. Accepted statuses: read | to_read | reading"
	msgEmptyFields   = "Title, Status or Author is empty"
	msgInvalidUUID   = "missing or invalid UUID"
	msgUnknownUUID   = "UUID does not exist"
	msgInvalidBody   = "request body is not valid JSON"
	msgNoSuchRoute   = "the requested resource does not exist on this server"
)

type addBookRequest struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	Status string `json:"status" validate:"required,oneof=read to_read reading"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=read to_read reading"`
}

type addBookResponse struct {
	UUID   string `json:"uuid"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

type updateStatusResponse struct {
	UUID   string       `json:"uuid"`
	Status books.Status `json:"status"`
}

type deleteResponse struct {
	UUID string `json:"uuid"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves the reading-list REST API.
type Handler struct {
	repo     Repository
	validate *validator.Validate
	metrics  *Metrics
	logger   *slog.Logger
	newID    func() string
}

func NewHandler(repo Repository, metrics *Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		repo:     repo,
		validate: newValidator(),
		metrics:  metrics,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (h *Handler) Register(r chi.Router) {
	r.Post(BooksPath, h.instrument("add", h.HandleAdd))
	r.Get(BooksPath, h.instrument("list", h.HandleList))
	r.Get(BooksPath+"/{uuid}", h.instrument("get", h.HandleGet))
	r.Put(BooksPath+"/{uuid}", h.instrument("update", h.HandleUpdateStatus))
	r.Delete(BooksPath+"/{uuid}", h.instrument("delete", h.HandleDelete))
}

// NewRouter builds the service router with health and fallback routes.
func NewRouter(h *Handler, extra func(chi.Router)) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.HandleHealth)
	h.Register(r)
	if extra != nil {
		extra(r)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: msgNoSuchRoute})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: msgNoSuchRoute})
	})
	return r
}

// HandleAdd creates a book from {title, author, status}.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		if failedOn(err, "status") {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidStatus})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgEmptyFields})
		return
	}

	book := books.Book{UUID: h.newID(), Title: req.Title, Author: req.Author, Status: books.Status(req.Status)}
	if err := h.repo.Add(ctx, book); err != nil {
		h.logger.ErrorContext(ctx, "add book failed", "error", err, "request_id", middleware.GetReqID(ctx))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to add book"})
		return
	}

	h.metrics.IncrementBooksAdded()
	writeJSON(w, http.StatusCreated, addBookResponse{UUID: book.UUID, Title: book.Title, Author: book.Author})
}

// HandleList returns every book keyed by UUID.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	list, err := h.repo.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list books failed", "error", err, "request_id", middleware.GetReqID(ctx))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to retrieve books"})
		return
	}

	out := make(map[string]books.Book, len(list))
	for _, b := range list {
		out[b.UUID] = b
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := bookID(w, r)
	if !ok {
		return
	}

	book, err := h.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: msgUnknownUUID})
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "get book failed", "error", err, "uuid", id)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to retrieve book"})
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// HandleUpdateStatus checks existence before validating the new status.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := bookID(w, r)
	if !ok {
		return
	}

	exists, err := h.repo.Exists(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "lookup book failed", "error", err, "uuid", id)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to update book"})
		return
	}
	if !exists {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: msgUnknownUUID})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidStatus})
		return
	}

	status := books.Status(req.Status)
	err = h.repo.UpdateStatus(ctx, id, status)
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: msgUnknownUUID})
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "update book failed", "error", err, "uuid", id)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to update book"})
		return
	}

	h.metrics.IncrementStatusUpdate(req.Status)
	writeJSON(w, http.StatusOK, updateStatusResponse{UUID: id, Status: status})
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := bookID(w, r)
	if !ok {
		return
	}

	err := h.repo.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: msgUnknownUUID})
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "delete book failed", "error", err, "uuid", id)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to delete book"})
		return
	}

	h.metrics.IncrementBooksDeleted()
	writeJSON(w, http.StatusOK, deleteResponse{UUID: id})
}

// HandleHealth reports 200 while the repository answers.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Ping(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "health check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next(ww, r)
		h.metrics.ObserveRequest(route, ww.Status(), start)
	}
}

func bookID(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "uuid")
	id, err := uuid.Parse(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidUUID})
		return "", false
	}
	return id.String(), true
}

func failedOn(err error, field string) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Field() == field {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
