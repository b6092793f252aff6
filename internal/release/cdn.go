package release

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/buildsmith/buildsmith/internal/common"
	"github.com/buildsmith/buildsmith/internal/httpclient"
	"github.com/buildsmith/buildsmith/internal/models"
	"github.com/ternarybob/arbor"
)

// UploadURLRequest describes the artifact the CDN should mint a presigned
// upload slot for.
type UploadURLRequest struct {
	FileExt      string `json:"fileExt"`
	ContentType  string `json:"contentType"`
	IsGameUpload bool   `json:"isGameUpload"`
	GameID       string `json:"gameId"`
	Version      string `json:"version"`
	SizeBytes    int64  `json:"size_bytes"`
}

type uploadURLResponse struct {
	URL string `json:"url"`
}

// CDNClient requests presigned upload URLs and streams artifact bytes to
// them. The presigned target is opaque; bytes go wherever the CDN says.
type CDNClient struct {
	baseURL      string
	httpClient   *http.Client
	uploadClient *http.Client
	logger       arbor.ILogger
}

// NewCDNClient creates a CDN client from storage configuration
func NewCDNClient(cfg *common.CDNConfig) *CDNClient {
	return &CDNClient{
		baseURL:      cfg.BaseURL,
		httpClient:   httpclient.NewDefaultHTTPClient(30 * time.Second),
		uploadClient: httpclient.NewUploadHTTPClient(),
		logger:       common.GetLogger(),
	}
}

// GenerateUploadURL asks the CDN for a presigned PUT target. The session id
// header is optional; the CDN accepts anonymous requests for some flows.
func (c *CDNClient) GenerateUploadURL(ctx context.Context, req *UploadURLRequest, sessionID string) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode upload url request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generateUploadUrl", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create upload url request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		httpReq.Header.Set("sessionID", sessionID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("upload url request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload url response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &models.UpstreamError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var ur uploadURLResponse
	if err := json.Unmarshal(respBody, &ur); err != nil {
		return "", fmt.Errorf("failed to decode upload url response: %w", err)
	}
	if ur.URL == "" {
		return "", fmt.Errorf("upload url response contained no url")
	}

	return ur.URL, nil
}

// Transfer PUTs the artifact bytes to the presigned URL. Progress is reported
// through the reader wrapping content; the CDN response body is drained and
// discarded on success.
func (c *CDNClient) Transfer(ctx context.Context, targetURL, contentType string, content io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, targetURL, content)
	if err != nil {
		return fmt.Errorf("failed to create transfer request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = size

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return fmt.Errorf("artifact transfer failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &models.UpstreamError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	io.Copy(io.Discard, resp.Body)
	return nil
}
