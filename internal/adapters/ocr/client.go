// Package ocr calls an external text-recognition service over HTTP.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Skufu/lipidcare/internal/domain"
	"github.com/Skufu/lipidcare/internal/extract"
)

// rowTolerance is how far apart, in pixels, two box centres may be and
// still sit on the same printed row.
const rowTolerance = 10

// recognizeResponse carries either plain lines or positioned boxes. Boxes
// win when both are present.
type recognizeResponse struct {
	Lines []string      `json:"lines"`
	Boxes []extract.Box `json:"boxes"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient makes single-attempt calls; retrying is the caller's decision.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &Client{httpClient: client, logger: logger}
}

// Recognize uploads the image and returns the recognised lines in reading
// order. An empty result is not an error.
func (c *Client) Recognize(ctx context.Context, filename string, image []byte) ([]string, error) {
	var (
		result  recognizeResponse
		failure errorResponse
	)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFileReader("image", filename, bytes.NewReader(image)).
		SetResult(&result).
		SetError(&failure).
		Post("/recognize")
	if err != nil {
		c.logger.Error("OCR service call failed", zap.String("filename", filename), zap.Error(err))
		return nil, fmt.Errorf("call ocr service: %w", err)
	}
	if resp.IsError() {
		c.logger.Error("OCR service returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("error", failure.Error),
		)
		return nil, fmt.Errorf("ocr service: status %d: %s", resp.StatusCode(), failure.Error)
	}

	lines := result.Lines
	if len(result.Boxes) > 0 {
		lines = extract.ReadingOrder(result.Boxes, rowTolerance)
	}
	c.logger.Debug("OCR recognised text",
		zap.String("filename", filename),
		zap.Int("line_count", len(lines)),
	)
	return lines, nil
}

var _ domain.TextRecognizer = (*Client)(nil)
