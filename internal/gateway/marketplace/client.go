package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"delivery-tracking/internal/apperr"
	"delivery-tracking/internal/domain"
)

const responseBodyLimit = 1 << 20

// Client is a marketplace gateway backed by the backend's REST API.
// Every request carries the configured bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a marketplace gateway for the given base URL.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		return nil
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// GetJob fetches a delivery job with its assignments.
func (c *Client) GetJob(ctx context.Context, jobID string) (*domain.DeliveryJob, error) {
	env, err := c.doJSON(ctx, http.MethodGet, "/api/products/"+jobID, nil)
	if err != nil {
		return nil, fmt.Errorf("marketplace gateway: GetJob: %w", err)
	}
	return mapJob(env.jobDTO), nil
}

// UpdateLocation reports the courier's current position. The backend may
// flip the job status to in-transit on the first successful update; the
// returned job reflects whatever the backend decided.
func (c *Client) UpdateLocation(ctx context.Context, jobID, userID string, pt domain.GeoPoint) (*domain.DeliveryJob, error) {
	body := updateLocationRequest{UserID: userID, Lat: pt.Lat, Lng: pt.Lng}
	env, err := c.doJSON(ctx, http.MethodPatch, "/api/products/"+jobID+"/update-location", body)
	if err != nil {
		return nil, fmt.Errorf("marketplace gateway: UpdateLocation: %w", err)
	}
	return mapJob(env.jobDTO), nil
}

// UploadDeliveryImage transmits a proof-of-delivery image as multipart
// form data. withBarcode selects which image slot the backend fills.
func (c *Client) UploadDeliveryImage(ctx context.Context, jobID, userID string, image []byte, filename string, withBarcode bool) (*domain.DeliveryJob, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("marketplace gateway: UploadDeliveryImage: %w", err)
	}
	if _, err := fw.Write(image); err != nil {
		return nil, fmt.Errorf("marketplace gateway: UploadDeliveryImage: %w", err)
	}
	if err := mw.WriteField("userId", userID); err != nil {
		return nil, fmt.Errorf("marketplace gateway: UploadDeliveryImage: %w", err)
	}
	if err := mw.WriteField("withBarcode", strconv.FormatBool(withBarcode)); err != nil {
		return nil, fmt.Errorf("marketplace gateway: UploadDeliveryImage: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("marketplace gateway: UploadDeliveryImage: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPatch, "/api/products/"+jobID+"/upload-delivery-image", &buf)
	if err != nil {
		return nil, fmt.Errorf("marketplace gateway: UploadDeliveryImage: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	env, err := c.send(req)
	if err != nil {
		return nil, fmt.Errorf("marketplace gateway: UploadDeliveryImage: %w", err)
	}
	return mapJob(env.jobDTO), nil
}

// SetRecipient registers the recipient's mobile number. The backend
// generates the OTP and echoes it back; the client never generates one.
func (c *Client) SetRecipient(ctx context.Context, jobID, userID, mobile string) (*domain.DeliveryJob, string, error) {
	body := setRecipientRequest{UserID: userID, RecipientMobile: mobile}
	env, err := c.doJSON(ctx, http.MethodPatch, "/api/products/"+jobID+"/set-recipient", body)
	if err != nil {
		return nil, "", fmt.Errorf("marketplace gateway: SetRecipient: %w", err)
	}
	return mapJob(env.jobDTO), env.OTPCode, nil
}

// VerifyOTP submits the confirmation code for comparison against the
// server-held OTP.
func (c *Client) VerifyOTP(ctx context.Context, jobID, userID, code string) (*domain.DeliveryJob, error) {
	body := verifyOTPRequest{UserID: userID, OTPCode: code}
	env, err := c.doJSON(ctx, http.MethodPatch, "/api/products/"+jobID+"/verify-otp", body)
	if err != nil {
		return nil, fmt.Errorf("marketplace gateway: VerifyOTP: %w", err)
	}
	return mapJob(env.jobDTO), nil
}

// MarkBarcodeScanned records the optional barcode confirmation.
func (c *Client) MarkBarcodeScanned(ctx context.Context, jobID, userID, data string) (*domain.DeliveryJob, error) {
	body := markBarcodeScannedRequest{UserID: userID, BarcodeData: data}
	env, err := c.doJSON(ctx, http.MethodPatch, "/api/products/"+jobID+"/mark-barcode-scanned", body)
	if err != nil {
		return nil, fmt.Errorf("marketplace gateway: MarkBarcodeScanned: %w", err)
	}
	return mapJob(env.jobDTO), nil
}

// UpdateDeliveryStatus issues the terminal status transition.
func (c *Client) UpdateDeliveryStatus(ctx context.Context, jobID, userID string, status domain.AssignmentStatus) (*domain.DeliveryJob, error) {
	body := updateDeliveryStatusRequest{UserID: userID, DeliveryStatus: string(status)}
	env, err := c.doJSON(ctx, http.MethodPatch, "/api/products/"+jobID+"/update-delivery-status", body)
	if err != nil {
		return nil, fmt.Errorf("marketplace gateway: UpdateDeliveryStatus: %w", err)
	}
	return mapJob(env.jobDTO), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any) (*jobEnvelope, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req)
}

func (c *Client) send(req *http.Request) (*jobEnvelope, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e errorDTO
		_ = json.Unmarshal(data, &e)
		return nil, &apperr.BackendError{StatusCode: resp.StatusCode, Message: e.Message}
	}

	var env jobEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &env, nil
}
