package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/expo-leads/internal/entity"
	"github.com/xavierca1/expo-leads/internal/infra/http/middleware"
	"github.com/xavierca1/expo-leads/internal/infra/ratelimit"
	"github.com/xavierca1/expo-leads/internal/usecase"
)

const maxBodyBytes = 1 << 20

type VisitorRegistrar interface {
	Execute(ctx context.Context, input usecase.SubmitLeadInput) (*usecase.RegisterVisitorOutput, error)
}

type LeadQuerier interface {
	ByExhibition(ctx context.Context, exhibitionID int64) ([]*entity.Lead, error)
	All(ctx context.Context) ([]*entity.Lead, error)
	Exists(ctx context.Context, email string, exhibitionID int64) (bool, error)
}

type VisitorHandler struct {
	register VisitorRegistrar
	leads    LeadQuerier
	limiter  ratelimit.Limiter
	logger   *zap.Logger
}

// NewVisitorHandler wires the visitor routes. limiter may be nil to disable
// throttling.
func NewVisitorHandler(register VisitorRegistrar, leads LeadQuerier, limiter ratelimit.Limiter, logger *zap.Logger) *VisitorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VisitorHandler{
		register: register,
		leads:    leads,
		limiter:  limiter,
		logger:   logger,
	}
}

// Register handles POST /api/visitors.
func (h *VisitorHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.allow(ctx, getClientIP(r)) {
		writeErrorResponse(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.")
		return
	}

	var input usecase.SubmitLeadInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "Invalid JSON")
		return
	}

	output, err := h.register.Execute(ctx, input)
	if err != nil {
		h.writeUseCaseError(w, err)
		return
	}

	middleware.RecordLeadCaptured()
	middleware.RecordNotification(output.EmailSent)

	writeJSON(w, http.StatusOK, output)
}

// ListByExhibition handles GET /api/visitors/exhibition/{exhibitionId}.
func (h *VisitorHandler) ListByExhibition(w http.ResponseWriter, r *http.Request) {
	exhibitionID, err := strconv.ParseInt(chi.URLParam(r, "exhibitionId"), 10, 64)
	if err != nil || exhibitionID <= 0 {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "exhibitionId must be a positive integer")
		return
	}

	leads, err := h.leads.ByExhibition(r.Context(), exhibitionID)
	if err != nil {
		h.writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, leads)
}

// ListAll handles GET /api/visitors/all.
func (h *VisitorHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	leads, err := h.leads.All(r.Context())
	if err != nil {
		h.writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, leads)
}

// Exists handles GET /api/visitors/exists?email=&exhibitionId=.
func (h *VisitorHandler) Exists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	exhibitionID, err := strconv.ParseInt(q.Get("exhibitionId"), 10, 64)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "exhibitionId must be an integer")
		return
	}

	exists, err := h.leads.Exists(r.Context(), q.Get("email"), exhibitionID)
	if err != nil {
		h.writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

// allow fails open: a limiter outage must not turn visitors away.
func (h *VisitorHandler) allow(ctx context.Context, key string) bool {
	if h.limiter == nil {
		return true
	}

	ok, err := h.limiter.Allow(ctx, key)
	if err != nil {
		h.logger.Warn("rate limiter unavailable", zap.Error(err))
		return true
	}
	return ok
}

func (h *VisitorHandler) writeUseCaseError(w http.ResponseWriter, err error) {
	var domainErr *usecase.DomainError
	if errors.As(err, &domainErr) {
		middleware.RecordLeadRejected(domainErr.Code)
		writeErrorResponse(w, http.StatusBadRequest, domainErr.Code, domainErr.Message)
		return
	}

	h.logger.Error("request failed", zap.Error(err))
	writeErrorResponse(w, http.StatusInternalServerError, usecase.CodeDatabase, "Internal server error")
}

// getClientIP prefers the first X-Forwarded-For hop set by the proxy.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
