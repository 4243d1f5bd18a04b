package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"delivery-tracking/internal/apperr"
	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/logx"
)

const maxImageSize = 10 << 20

// TrackingHandler handles HTTP requests for delivery tracking.
type TrackingHandler struct {
	usecase trackingUsecase
	logger  logx.Logger
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(logger logx.Logger, uc trackingUsecase) *TrackingHandler {
	return &TrackingHandler{usecase: uc, logger: logger}
}

// Progress handles GET /api/jobs/{jobID}/tracking?userId=...
func (h *TrackingHandler) Progress(w http.ResponseWriter, r *http.Request) {
	jobID, userID, ok := h.ids(w, r, r.URL.Query().Get("userId"))
	if !ok {
		return
	}

	p, err := h.usecase.Progress(r.Context(), jobID, userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, progressToResponse(p))
}

// UpdateLocation handles POST /api/jobs/{jobID}/tracking/location.
// Omitting lat/lng falls back to the configured location provider.
func (h *TrackingHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req updateLocationRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	jobID, userID, ok := h.ids(w, r, req.UserID)
	if !ok {
		return
	}
	if (req.Lat == nil) != (req.Lng == nil) {
		writeError(h.logger, w, r, http.StatusBadRequest, "lat and lng must be provided together")
		return
	}

	var pt *domain.GeoPoint
	if req.Lat != nil {
		pt = &domain.GeoPoint{Lat: *req.Lat, Lng: *req.Lng}
	}

	p, err := h.usecase.UpdateLocation(r.Context(), jobID, userID, pt)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, progressToResponse(p))
}

// UploadImage handles POST /api/jobs/{jobID}/tracking/image.
// Multipart form: image file plus userId and optional withBarcode fields.
func (h *TrackingHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}
	jobID, userID, ok := h.ids(w, r, r.FormValue("userId"))
	if !ok {
		return
	}
	withBarcode := r.FormValue("withBarcode") == "true"

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageSize))
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "failed to read image")
		return
	}

	p, err := h.usecase.UploadDeliveryImage(r.Context(), jobID, userID, image, header.Filename, withBarcode)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, progressToResponse(p))
}

// SetRecipient handles POST /api/jobs/{jobID}/tracking/recipient.
func (h *TrackingHandler) SetRecipient(w http.ResponseWriter, r *http.Request) {
	var req setRecipientRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	jobID, userID, ok := h.ids(w, r, req.UserID)
	if !ok {
		return
	}

	p, err := h.usecase.SetRecipient(r.Context(), jobID, userID, req.MobileNumber)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, progressToResponse(p))
}

// VerifyOTP handles POST /api/jobs/{jobID}/tracking/otp.
func (h *TrackingHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	jobID, userID, ok := h.ids(w, r, req.UserID)
	if !ok {
		return
	}

	p, err := h.usecase.VerifyOTP(r.Context(), jobID, userID, req.OTP)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, progressToResponse(p))
}

// MarkBarcode handles POST /api/jobs/{jobID}/tracking/barcode.
func (h *TrackingHandler) MarkBarcode(w http.ResponseWriter, r *http.Request) {
	var req barcodeRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	jobID, userID, ok := h.ids(w, r, req.UserID)
	if !ok {
		return
	}

	p, err := h.usecase.MarkBarcodeScanned(r.Context(), jobID, userID, req.BarcodeData)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, progressToResponse(p))
}

// MarkDelivered handles POST /api/jobs/{jobID}/tracking/delivered.
func (h *TrackingHandler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	var req markDeliveredRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	jobID, userID, ok := h.ids(w, r, req.UserID)
	if !ok {
		return
	}

	p, err := h.usecase.MarkDelivered(r.Context(), jobID, userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, progressToResponse(p))
}

func (h *TrackingHandler) ids(w http.ResponseWriter, r *http.Request, userID string) (string, string, bool) {
	jobID := strings.TrimSpace(chi.URLParam(r, "jobID"))
	if jobID == "" {
		writeError(h.logger, w, r, http.StatusBadRequest, "job id required")
		return "", "", false
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		writeError(h.logger, w, r, http.StatusBadRequest, "userId required")
		return "", "", false
	}
	return jobID, userID, true
}

func (h *TrackingHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var pe *apperr.PreconditionError
	var be *apperr.BackendError

	switch {
	case errors.As(err, &pe):
		h.logger.Warn("http error",
			logx.String("req_id", reqID(r.Context())),
			logx.Int("status", http.StatusUnprocessableEntity),
			logx.Any("missing", pe.Missing),
		)
		writeJSON(h.logger, w, r, http.StatusUnprocessableEntity, preconditionResponse{
			Error:   "delivery requirements not met",
			Missing: pe.Missing,
		})
	case errors.Is(err, apperr.ErrValidation):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid input")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "job or assignment not found")
	case errors.Is(err, apperr.ErrConflict):
		writeError(h.logger, w, r, http.StatusConflict, "recipient already set")
	case errors.Is(err, apperr.ErrTerminalState):
		writeError(h.logger, w, r, http.StatusConflict, "assignment already completed")
	case errors.Is(err, apperr.ErrLocationPermissionDenied):
		writeError(h.logger, w, r, http.StatusServiceUnavailable, "location permission denied")
	case errors.Is(err, apperr.ErrLocationUnavailable):
		writeError(h.logger, w, r, http.StatusServiceUnavailable, "location unavailable")
	case errors.As(err, &be):
		writeError(h.logger, w, r, http.StatusBadGateway, be.Message)
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}
