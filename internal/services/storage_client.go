package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/expert-marketplace/backend/internal/apperr"
)

// StorageClient talks to the internal file storage service that holds
// evidence attachments and rendered contract documents.
type StorageClient struct {
	baseURL    string
	bucket     string
	httpClient *http.Client
	log        *zap.Logger
}

func NewStorageClient(baseURL, bucket string, log *zap.Logger) *StorageClient {
	return &StorageClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		bucket:  bucket,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

type UploadRequest struct {
	Bucket        string `json:"bucket"`
	Name          string `json:"name"`
	ContentBase64 string `json:"content_base64"`
}

type UploadResult struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Upload pushes a single attachment and returns its stored path and public
// URL. Storage failures surface as a 503 so the caller can retry the whole
// submission.
func (c *StorageClient) Upload(ctx context.Context, name, contentBase64 string) (*UploadResult, error) {
	body, err := json.Marshal(UploadRequest{
		Bucket:        c.bucket,
		Name:          name,
		ContentBase64: contentBase64,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/internal/files", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("storage service unavailable", zap.Error(err))
		return nil, apperr.StorageUnavailable("file storage is temporarily unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		c.log.Warn("storage upload rejected", zap.Int("status", resp.StatusCode), zap.String("body", string(b)))
		return nil, apperr.New(apperr.CodeEvidenceUploadFailed, http.StatusBadGateway,
			fmt.Sprintf("storage returned %d", resp.StatusCode))
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *StorageClient) Delete(ctx context.Context, path string) error {
	url := fmt.Sprintf("%s/internal/files?bucket=%s&path=%s", c.baseURL, c.bucket, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("storage delete failed", zap.String("path", path), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		c.log.Warn("storage delete rejected", zap.Int("status", resp.StatusCode), zap.String("path", path))
	}
	return nil
}
