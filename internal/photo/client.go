// Package photo talks to the external document and face verification service.
package photo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/spec-kit/credit-service/internal/domain"
	apperrors "github.com/spec-kit/credit-service/pkg/util"
)

const (
	serviceName = "photo_service"
	formField   = "photo"
	statusOK    = "OK"
	maxBodySize = 1 << 20
)

// TimingRecorder receives one observation per outbound call.
type TimingRecorder interface {
	WriteExternalTiming(operation string, httpStatus int, failed bool, duration time.Duration)
}

// Client calls the photo verification service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
	recorder   TimingRecorder
}

// NewClient creates a client. A nil recorder disables timing.
func NewClient(baseURL string, timeout time.Duration, recorder TimingRecorder) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		recorder:   recorder,
	}
}

// Validate submits the photo and reports whether the service accepted it.
func (c *Client) Validate(ctx context.Context, p domain.Photo, kind domain.PhotoKind) (bool, error) {
	body, contentType, err := encodePhoto(p)
	if err != nil {
		return false, apperrors.NewExternalServiceError(serviceName, "encode request", err)
	}

	resp, status, err := c.do(ctx, http.MethodPost, "/"+string(kind), body, contentType)
	if err != nil {
		return false, err
	}
	if status != http.StatusOK {
		return false, apperrors.NewExternalServiceError(serviceName, fmt.Sprintf("unexpected status %d", status), nil)
	}
	if !gjson.ValidBytes(resp) {
		return false, apperrors.NewExternalServiceError(serviceName, "malformed response body", nil)
	}
	return gjson.GetBytes(resp, "status").String() == statusOK, nil
}

// IsConnected probes the service liveness endpoint.
func (c *Client) IsConnected(ctx context.Context) (bool, error) {
	_, status, err := c.do(ctx, http.MethodGet, "/healthz/up", nil, "")
	if err != nil {
		return false, err
	}
	if status != http.StatusOK {
		return false, fmt.Errorf("photo service liveness returned %d", status)
	}
	return true, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.baseURL + path
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, apperrors.NewExternalServiceError(serviceName, "build request", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	operation := method + " " + url
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(operation, 0, true, start)
		if isTimeout(err) {
			return nil, 0, apperrors.NewExternalTimeout(serviceName, c.timeout)
		}
		return nil, 0, apperrors.NewExternalServiceError(serviceName, "request failed", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	c.record(operation, resp.StatusCode, err != nil || resp.StatusCode != http.StatusOK, start)
	if err != nil {
		if isTimeout(err) {
			return nil, 0, apperrors.NewExternalTimeout(serviceName, c.timeout)
		}
		return nil, 0, apperrors.NewExternalServiceError(serviceName, "read response", err)
	}
	return payload, resp.StatusCode, nil
}

func (c *Client) record(operation string, status int, failed bool, start time.Time) {
	if c.recorder != nil {
		c.recorder.WriteExternalTiming(operation, status, failed, time.Since(start))
	}
}

func encodePhoto(p domain.Photo) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fileName := p.FileName
	if fileName == "" {
		fileName = formField
	}
	contentType := p.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, formField, fileName))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(p.Content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
