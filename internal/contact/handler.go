package contact

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"contact-service/internal/httputil"
	"contact-service/internal/logger"
	"contact-service/internal/metrics"
	"contact-service/pkg/submission"

	"github.com/go-chi/chi/v5"
)

const (
	SendPath       = "/api/send"
	maxBodyBytes   = 64 << 10
	sentMessage    = "Message Sent Successfully"
	invalidBodyMsg = "invalid request body"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewHandler(service *Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		metrics: metrics,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post(SendPath, h.Send)
}

// RegisterAdminRoutes mounts the read side; the caller applies auth.
func (h *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/messages", h.ListMessages)
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx, h.logger)

	h.metrics.RecordSubmissionReceived(ctx)

	var req submission.Submission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		log.WarnContext(ctx, "failed to decode submission", "error", err)
		h.metrics.RecordSubmissionInvalid(ctx)
		httputil.RespondWithError(w, http.StatusBadRequest, invalidBodyMsg)
		return
	}

	if _, err := h.service.Submit(ctx, req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, SendResponse{Message: sentMessage})
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	messages, err := h.service.GetMessagesByEmail(ctx, r.URL.Query().Get("email"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, MessagesResponse{Messages: messages})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context(), h.logger)

	var fields submission.FieldErrors
	if errors.As(err, &fields) {
		log.InfoContext(r.Context(), "submission rejected", "fields", fields)
		httputil.RespondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: fields,
		})
		return
	}
	if errors.Is(err, ErrInvalidInput) {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Provider and store failures share one envelope
	log.ErrorContext(r.Context(), "contact request failed", "error", err)
	httputil.RespondWithError(w, http.StatusInternalServerError, err.Error())
}
