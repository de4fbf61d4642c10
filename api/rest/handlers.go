package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/alexnthnz/booking-notifications/internal/booking"
	"github.com/alexnthnz/booking-notifications/internal/monitoring"
	"github.com/alexnthnz/booking-notifications/internal/notification"
	"github.com/alexnthnz/booking-notifications/internal/queue"
)

const maxBodyBytes = 1 << 20

// Publisher queues booking confirmed events for the dispatcher
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, event queue.BookingConfirmedEvent) error
}

// Handler holds dependencies for REST API handlers
type Handler struct {
	publisher Publisher
	renderer  *notification.Renderer
	metrics   *monitoring.Metrics
	logger    *zap.Logger
	validator *validator.Validate
}

// NewHandler creates a new REST API handler
func NewHandler(
	publisher Publisher,
	renderer *notification.Renderer,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		publisher: publisher,
		renderer:  renderer,
		metrics:   metrics,
		logger:    logger,
		validator: validator.New(),
	}
}

type bookingPath struct {
	Variant string `validate:"required,oneof=hotel event session item"`
	Role    string `validate:"omitempty,oneof=customer hotel_owner instructor item_owner"`
}

// ConfirmationResponse is returned once a confirmation has been queued
type ConfirmationResponse struct {
	ID        string `json:"id"`
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// PreviewResponse carries a rendered email that was not sent
type PreviewResponse struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// CreateConfirmation handles POST /bookings/{variant}/confirmations
func (h *Handler) CreateConfirmation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		h.metrics.RecordDuration("api_create_confirmation", time.Since(start).Seconds())
	}()

	h.metrics.IncrementActiveConnections()
	defer h.metrics.DecrementActiveConnections()

	path := bookingPath{Variant: mux.Vars(r)["variant"]}
	if err := h.validator.Struct(path); err != nil {
		h.writeErrorResponse(w, fmt.Sprintf("Unknown booking variant %q", path.Variant), http.StatusBadRequest)
		return
	}
	variant := booking.Variant(path.Variant)

	body, b, ok := h.decodeBooking(w, r, variant)
	if !ok {
		return
	}

	if b.Common().ID == "" {
		h.writeErrorResponse(w, "Booking id is required", http.StatusBadRequest)
		return
	}

	event := queue.NewBookingConfirmedEvent(variant, b.Common().ID, body)
	if err := h.publisher.PublishBookingConfirmed(r.Context(), event); err != nil {
		h.logger.Error("Failed to publish booking confirmed event",
			zap.String("variant", string(variant)),
			zap.String("booking_id", event.BookingID),
			zap.Error(err))
		h.metrics.RecordEventPublished(string(variant), "failed")
		h.writeErrorResponse(w, "Failed to queue booking confirmation", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordEventPublished(string(variant), "published")
	h.logger.Info("Booking confirmation queued",
		zap.String("id", event.ID),
		zap.String("variant", string(variant)),
		zap.String("booking_id", event.BookingID),
	)

	h.writeJSON(w, http.StatusAccepted, ConfirmationResponse{
		ID:        event.ID,
		BookingID: event.BookingID,
		Status:    "queued",
	})
}

// PreviewEmail handles POST /bookings/{variant}/previews/{role}
func (h *Handler) PreviewEmail(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	path := bookingPath{Variant: vars["variant"], Role: vars["role"]}
	if err := h.validator.Struct(path); err != nil {
		h.writeErrorResponse(w, fmt.Sprintf("Validation error: %v", err), http.StatusBadRequest)
		return
	}

	variant, role := booking.Variant(path.Variant), notification.Role(path.Role)
	if !h.renderer.HasTemplate(variant, role) {
		h.writeErrorResponse(w, fmt.Sprintf("No %s email for %s bookings", role, variant), http.StatusBadRequest)
		return
	}

	_, b, ok := h.decodeBooking(w, r, variant)
	if !ok {
		return
	}

	recipient := previewRecipient(b, role)
	email, err := h.renderer.RenderEmail(b, recipient)
	if err != nil {
		h.logger.Error("Failed to render email preview", zap.Error(err))
		h.writeErrorResponse(w, "Failed to render email", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, PreviewResponse{
		Subject: email.Subject,
		HTML:    email.HTML,
		Text:    email.Text,
	})
}

// previewRecipient picks the first resolved recipient with the role, or an
// empty one when the booking has no such addressee.
func previewRecipient(b booking.Booking, role notification.Role) notification.Recipient {
	recipients, err := notification.ResolveRecipients(b)
	if err == nil {
		for _, rc := range recipients {
			if rc.Role == role {
				return rc
			}
		}
	}
	return notification.Recipient{Role: role, Variant: b.Variant()}
}

func (h *Handler) decodeBooking(w http.ResponseWriter, r *http.Request, variant booking.Variant) (json.RawMessage, booking.Booking, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return nil, nil, false
	}

	b, err := booking.Decode(variant, body)
	if err == nil {
		err = booking.Validate(b)
	}
	if err != nil {
		h.logger.Warn("Rejected booking", zap.String("variant", string(variant)), zap.Error(err))
		h.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return nil, nil, false
	}
	return body, b, true
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "booking-notifications-api",
		"version":   "1.0.0",
	})
}

// Metrics handles GET /metrics (Prometheus metrics)
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.Handler().ServeHTTP(w, r)
}

func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeErrorResponse writes an error response
func (h *Handler) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	h.writeJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// SetupRoutes sets up all REST API routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/bookings/{variant}/confirmations", h.CreateConfirmation).Methods("POST")
	api.HandleFunc("/bookings/{variant}/previews/{role}", h.PreviewEmail).Methods("POST")

	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/metrics", h.Metrics).Methods("GET")

	router.Use(h.loggingMiddleware)
	router.Use(h.corsMiddleware)

	return router
}

// loggingMiddleware logs HTTP requests
func (h *Handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(recorder, r)

		h.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", recorder.statusCode),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_addr", r.RemoteAddr),
		)
	})
}

// corsMiddleware adds CORS headers
func (h *Handler) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// responseRecorder wraps http.ResponseWriter to capture status code
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
