package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/document-hub/internal/config"
	"github.com/kirillkom/document-hub/internal/core/domain"
	"github.com/kirillkom/document-hub/internal/core/ports"
	"github.com/kirillkom/document-hub/internal/observability/metrics"
)

const defaultMaxUploadBytes = 32 << 20

type Router struct {
	cfg     config.Config
	ingest  ports.DocumentIngestor
	remover ports.DocumentRemover
	lister  ports.DocumentLister
	query   ports.DocumentQueryService
	metrics *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	ingest ports.DocumentIngestor,
	remover ports.DocumentRemover,
	lister ports.DocumentLister,
	query ports.DocumentQueryService,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:     cfg,
		ingest:  ingest,
		remover: remover,
		lister:  lister,
		query:   query,
		metrics: httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}
	mux.HandleFunc("POST /v1/documents", rt.uploadDocument)
	mux.HandleFunc("GET /v1/documents", rt.listDocuments)
	mux.HandleFunc("DELETE /v1/documents/{id}", rt.deleteDocument)
	mux.HandleFunc("POST /v1/ask", rt.ask)

	var handler http.Handler = mux
	handler = bodyLimitMiddleware(handler, rt.maxUploadBytes())
	if rt.cfg.APIRateLimitRPS > 0 {
		handler = newRateLimiter(rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst).middleware(handler)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) maxUploadBytes() int64 {
	if rt.cfg.MaxUploadBytes > 0 {
		return rt.cfg.MaxUploadBytes
	}
	return defaultMaxUploadBytes
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rt.recordUpload("rejected")
			writeError(w, http.StatusRequestEntityTooLarge, "file is too large")
			return
		}
		rt.recordUpload("rejected")
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		rt.recordUpload("rejected")
		writeError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	doc, err := rt.ingest.Store(r.Context(), domain.Upload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Data:        data,
	})
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		if status >= http.StatusInternalServerError {
			rt.recordUpload("failed")
			slog.ErrorContext(r.Context(), "document_upload_failed",
				"request_id", requestIDFromContext(r.Context()),
				"filename", fileHeader.Filename,
				"error", err.Error(),
			)
		} else {
			rt.recordUpload("rejected")
		}
		writeError(w, status, errorMessage(status, "failed to store document"))
		return
	}

	if doc.Indexed {
		rt.recordUpload("indexed")
	} else {
		rt.recordUpload("not_indexed")
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := rt.lister.ListDocuments(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "document_list_failed",
			"request_id", requestIDFromContext(r.Context()),
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "document id is required")
		return
	}

	if err := rt.remover.Delete(r.Context(), id); err != nil {
		status := mapErrorToHTTPStatus(err)
		switch {
		case status == http.StatusNotFound:
			rt.recordDelete("not_found")
		default:
			rt.recordDelete("failed")
			slog.ErrorContext(r.Context(), "document_delete_failed",
				"request_id", requestIDFromContext(r.Context()),
				"document_id", id,
				"error", err.Error(),
			)
		}
		writeError(w, status, errorMessage(status, "failed to delete document"))
		return
	}

	rt.recordDelete("deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	start := time.Now()
	result := rt.query.Ask(r.Context(), question)
	if rt.metrics != nil {
		kind := "ok"
		if result.IsError {
			kind = string(result.Kind)
		}
		rt.metrics.RecordAsk(kind, time.Since(start))
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) recordUpload(outcome string) {
	if rt.metrics != nil {
		rt.metrics.RecordUpload(outcome)
	}
}

func (rt *Router) recordDelete(outcome string) {
	if rt.metrics != nil {
		rt.metrics.RecordDelete(outcome)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
