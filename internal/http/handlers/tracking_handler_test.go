package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivery-tracking/internal/apperr"
	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/service/tracking"
	testlog "delivery-tracking/internal/testutil"
)

type stubTrackingUsecase struct {
	progressFn      func(ctx context.Context, jobID, userID string) (tracking.Progress, error)
	updateLocFn     func(ctx context.Context, jobID, userID string, pt *domain.GeoPoint) (tracking.Progress, error)
	uploadFn        func(ctx context.Context, jobID, userID string, image []byte, filename string, withBarcode bool) (tracking.Progress, error)
	setRecipientFn  func(ctx context.Context, jobID, userID, mobile string) (tracking.Progress, error)
	verifyOTPFn     func(ctx context.Context, jobID, userID, code string) (tracking.Progress, error)
	markBarcodeFn   func(ctx context.Context, jobID, userID, data string) (tracking.Progress, error)
	markDeliveredFn func(ctx context.Context, jobID, userID string) (tracking.Progress, error)
}

func (s *stubTrackingUsecase) Progress(ctx context.Context, jobID, userID string) (tracking.Progress, error) {
	if s.progressFn == nil {
		panic("Progress not expected in this test")
	}
	return s.progressFn(ctx, jobID, userID)
}

func (s *stubTrackingUsecase) UpdateLocation(ctx context.Context, jobID, userID string, pt *domain.GeoPoint) (tracking.Progress, error) {
	if s.updateLocFn == nil {
		panic("UpdateLocation not expected in this test")
	}
	return s.updateLocFn(ctx, jobID, userID, pt)
}

func (s *stubTrackingUsecase) UploadDeliveryImage(ctx context.Context, jobID, userID string, image []byte, filename string, withBarcode bool) (tracking.Progress, error) {
	if s.uploadFn == nil {
		panic("UploadDeliveryImage not expected in this test")
	}
	return s.uploadFn(ctx, jobID, userID, image, filename, withBarcode)
}

func (s *stubTrackingUsecase) SetRecipient(ctx context.Context, jobID, userID, mobile string) (tracking.Progress, error) {
	if s.setRecipientFn == nil {
		panic("SetRecipient not expected in this test")
	}
	return s.setRecipientFn(ctx, jobID, userID, mobile)
}

func (s *stubTrackingUsecase) VerifyOTP(ctx context.Context, jobID, userID, code string) (tracking.Progress, error) {
	if s.verifyOTPFn == nil {
		panic("VerifyOTP not expected in this test")
	}
	return s.verifyOTPFn(ctx, jobID, userID, code)
}

func (s *stubTrackingUsecase) MarkBarcodeScanned(ctx context.Context, jobID, userID, data string) (tracking.Progress, error) {
	if s.markBarcodeFn == nil {
		panic("MarkBarcodeScanned not expected in this test")
	}
	return s.markBarcodeFn(ctx, jobID, userID, data)
}

func (s *stubTrackingUsecase) MarkDelivered(ctx context.Context, jobID, userID string) (tracking.Progress, error) {
	if s.markDeliveredFn == nil {
		panic("MarkDelivered not expected in this test")
	}
	return s.markDeliveredFn(ctx, jobID, userID)
}

func trackingRouter(uc trackingUsecase) http.Handler {
	h := NewTrackingHandler(testlog.New().Logger(), uc)
	r := chi.NewRouter()
	r.Route("/api/jobs/{jobID}/tracking", func(r chi.Router) {
		r.Get("/", h.Progress)
		r.Post("/location", h.UpdateLocation)
		r.Post("/image", h.UploadImage)
		r.Post("/recipient", h.SetRecipient)
		r.Post("/otp", h.VerifyOTP)
		r.Post("/barcode", h.MarkBarcode)
		r.Post("/delivered", h.MarkDelivered)
	})
	return r
}

func postJSON(t *testing.T, router http.Handler, url, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func sampleProgress() tracking.Progress {
	return tracking.Progress{
		JobID:            "job-1",
		UserID:           "user-1",
		JobStatus:        domain.JobStatusInTransit,
		AssignmentStatus: domain.AssignmentInTransit,
		Flags: domain.RequirementFlags{
			LocationUpdated: true,
			RecipientSet:    true,
		},
	}
}

func TestTrackingHandler_Progress_OK(t *testing.T) {
	t.Parallel()

	uc := &stubTrackingUsecase{
		progressFn: func(_ context.Context, jobID, userID string) (tracking.Progress, error) {
			require.Equal(t, "job-1", jobID)
			require.Equal(t, "user-1", userID)
			return sampleProgress(), nil
		},
	}
	router := trackingRouter(uc)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/job-1/tracking?userId=user-1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
        "jobId": "job-1",
        "userId": "user-1",
        "jobStatus": "in-transit",
        "deliveryStatus": "in-transit",
        "flags": {
            "locationUpdated": true,
            "productImageUploaded": false,
            "recipientSet": true,
            "otpVerified": false,
            "barcodeScanned": false
        },
        "canMarkDelivered": false
    }`, rr.Body.String())
}

func TestTrackingHandler_Progress_MissingUserID(t *testing.T) {
	t.Parallel()

	router := trackingRouter(&stubTrackingUsecase{})

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/job-1/tracking", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"userId required"}`, rr.Body.String())
}

func TestTrackingHandler_UpdateLocation_OK(t *testing.T) {
	t.Parallel()

	uc := &stubTrackingUsecase{
		updateLocFn: func(_ context.Context, jobID, userID string, pt *domain.GeoPoint) (tracking.Progress, error) {
			require.NotNil(t, pt)
			require.Equal(t, 12.5, pt.Lat)
			require.Equal(t, 77.25, pt.Lng)
			return sampleProgress(), nil
		},
	}
	router := trackingRouter(uc)

	rr := postJSON(t, router, "/api/jobs/job-1/tracking/location",
		`{"userId":"user-1","lat":12.5,"lng":77.25}`)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestTrackingHandler_UpdateLocation_NoCoords_UsesProvider(t *testing.T) {
	t.Parallel()

	uc := &stubTrackingUsecase{
		updateLocFn: func(_ context.Context, _, _ string, pt *domain.GeoPoint) (tracking.Progress, error) {
			require.Nil(t, pt)
			return sampleProgress(), nil
		},
	}
	router := trackingRouter(uc)

	rr := postJSON(t, router, "/api/jobs/job-1/tracking/location", `{"userId":"user-1"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestTrackingHandler_UpdateLocation_LoneLat(t *testing.T) {
	t.Parallel()

	router := trackingRouter(&stubTrackingUsecase{})

	rr := postJSON(t, router, "/api/jobs/job-1/tracking/location",
		`{"userId":"user-1","lat":12.5}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"lat and lng must be provided together"}`, rr.Body.String())
}

func TestTrackingHandler_UpdateLocation_ProviderDenied(t *testing.T) {
	t.Parallel()

	uc := &stubTrackingUsecase{
		updateLocFn: func(context.Context, string, string, *domain.GeoPoint) (tracking.Progress, error) {
			return tracking.Progress{}, apperr.ErrLocationPermissionDenied
		},
	}
	router := trackingRouter(uc)

	rr := postJSON(t, router, "/api/jobs/job-1/tracking/location", `{"userId":"user-1"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.JSONEq(t, `{"error":"location permission denied"}`, rr.Body.String())
}

func TestTrackingHandler_UploadImage_OK(t *testing.T) {
	t.Parallel()

	uc := &stubTrackingUsecase{
		uploadFn: func(_ context.Context, jobID, userID string, image []byte, filename string, withBarcode bool) (tracking.Progress, error) {
			require.Equal(t, "job-1", jobID)
			require.Equal(t, "user-1", userID)
			require.Equal(t, []byte{0xde, 0xad}, image)
			require.Equal(t, "proof.jpg", filename)
			require.True(t, withBarcode)
			return sampleProgress(), nil
		},
	}
	router := trackingRouter(uc)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("userId", "user-1"))
	require.NoError(t, mw.WriteField("withBarcode", "true"))
	fw, err := mw.CreateFormFile("image", "proof.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte{0xde, 0xad})
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/job-1/tracking/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestTrackingHandler_UploadImage_MissingFile(t *testing.T) {
	t.Parallel()

	router := trackingRouter(&stubTrackingUsecase{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("userId", "user-1"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/job-1/tracking/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"image file required"}`, rr.Body.String())
}

func TestTrackingHandler_SetRecipient_SurfacesOTP(t *testing.T) {
	t.Parallel()

	uc := &stubTrackingUsecase{
		setRecipientFn: func(_ context.Context, _, _ string, mobile string) (tracking.Progress, error) {
			require.Equal(t, "9876543210", mobile)
			p := sampleProgress()
			p.OTPCode = "482913"
			return p, nil
		},
	}
	router := trackingRouter(uc)

	rr := postJSON(t, router, "/api/jobs/job-1/tracking/recipient",
		`{"userId":"user-1","mobileNumber":"9876543210"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"otpCode":"482913"`)
}

func TestTrackingHandler_SetRecipient_Validation(t *testing.T) {
	t.Parallel()

	uc := &stubTrackingUsecase{
		setRecipientFn: func(context.Context, string, string, string) (tracking.Progress, error) {
			return tracking.Progress{}, fmt.Errorf("bad mobile: %w", apperr.ErrValidation)
		},
	}
	router := trackingRouter(uc)

	rr := postJSON(t, router, "/api/jobs/job-1/tracking/recipient",
		`{"userId":"user-1","mobileNumber":"123"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"invalid input"}`, rr.Body.String())
}

func TestTrackingHandler_SetRecipient_Conflict(t *testing.T) {
	t.Parallel()

	uc := &stubTrackingUsecase{
		setRecipientFn: func(context.Context, string, string, string) (tracking.Progress, error) {
			return tracking.Progress{}, apperr.ErrConflict
		},
	}
	router := trackingRouter(uc)

	rr := postJSON(t, router, "/api/jobs/job-1/tracking/recipient",
		`{"userId":"user-1","mobileNumber":"9876543210"}`)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.JSONEq(t, `{"error":"recipient already set"}`, rr.Body.String())
}

func TestTrackingHandler_VerifyOTP_BackendMessagePassthrough(t *testing.T) {
	t.Parallel()

	uc := &stubTrackingUsecase{
		verifyOTPFn: func(context.Context, string, string, string) (tracking.Progress, error) {
			return tracking.Progress{}, &apperr.BackendError{StatusCode: 400, Message: "OTP does not match"}
		},
	}
	router := trackingRouter(uc)

	rr := postJSON(t, router, "/api/jobs/job-1/tracking/otp",
		`{"userId":"user-1","otp":"111111"}`)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.JSONEq(t, `{"error":"OTP does not match"}`, rr.Body.String())
}

func TestTrackingHandler_MarkDelivered_PreconditionFailed(t *testing.T) {
	t.Parallel()

	uc := &stubTrackingUsecase{
		markDeliveredFn: func(context.Context, string, string) (tracking.Progress, error) {
			return tracking.Progress{}, &apperr.PreconditionError{
				Missing: []string{"productImageUploaded", "otpVerified"},
			}
		},
	}
	router := trackingRouter(uc)

	rr := postJSON(t, router, "/api/jobs/job-1/tracking/delivered", `{"userId":"user-1"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.JSONEq(t, `{
        "error": "delivery requirements not met",
        "missing": ["productImageUploaded", "otpVerified"]
    }`, rr.Body.String())
}

func TestTrackingHandler_MarkDelivered_Terminal(t *testing.T) {
	t.Parallel()

	uc := &stubTrackingUsecase{
		markDeliveredFn: func(context.Context, string, string) (tracking.Progress, error) {
			return tracking.Progress{}, fmt.Errorf("assignment is delivered: %w", apperr.ErrTerminalState)
		},
	}
	router := trackingRouter(uc)

	rr := postJSON(t, router, "/api/jobs/job-1/tracking/delivered", `{"userId":"user-1"}`)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.JSONEq(t, `{"error":"assignment already completed"}`, rr.Body.String())
}

func TestTrackingHandler_MarkDelivered_OK(t *testing.T) {
	t.Parallel()

	uc := &stubTrackingUsecase{
		markDeliveredFn: func(context.Context, string, string) (tracking.Progress, error) {
			p := sampleProgress()
			p.JobStatus = domain.JobStatusDelivered
			p.AssignmentStatus = domain.AssignmentDelivered
			p.Flags = domain.RequirementFlags{
				LocationUpdated:      true,
				ProductImageUploaded: true,
				RecipientSet:         true,
				OTPVerified:          true,
			}
			return p, nil
		},
	}
	router := trackingRouter(uc)

	rr := postJSON(t, router, "/api/jobs/job-1/tracking/delivered", `{"userId":"user-1"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"deliveryStatus":"delivered"`)
	assert.Contains(t, rr.Body.String(), `"canMarkDelivered":true`)
}

func TestTrackingHandler_NotFound(t *testing.T) {
	t.Parallel()

	uc := &stubTrackingUsecase{
		progressFn: func(context.Context, string, string) (tracking.Progress, error) {
			return tracking.Progress{}, apperr.ErrNotFound
		},
	}
	router := trackingRouter(uc)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/job-x/tracking?userId=user-1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestTrackingHandler_InvalidJSON(t *testing.T) {
	t.Parallel()

	uc := &stubTrackingUsecase{
		verifyOTPFn: func(context.Context, string, string, string) (tracking.Progress, error) {
			require.FailNow(t, "usecase must not be called on invalid json")
			return tracking.Progress{}, nil
		},
	}
	router := trackingRouter(uc)

	rr := postJSON(t, router, "/api/jobs/job-1/tracking/otp", `{"userId":`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"invalid json"}`, rr.Body.String())
}

func TestTrackingHandler_InternalError(t *testing.T) {
	t.Parallel()

	uc := &stubTrackingUsecase{
		markBarcodeFn: func(context.Context, string, string, string) (tracking.Progress, error) {
			return tracking.Progress{}, errors.New("boom")
		},
	}
	router := trackingRouter(uc)

	rr := postJSON(t, router, "/api/jobs/job-1/tracking/barcode", `{"userId":"user-1"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rr.Body.String())
}
