// Package classifier calls the statistical risk model served over HTTP.
package classifier

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Skufu/lipidcare/internal/domain"
	"github.com/Skufu/lipidcare/internal/metrics"
)

type predictRequest struct {
	Features []float64 `json:"features"`
}

type predictResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{httpClient: client, logger: logger}
}

func (c *Client) Predict(ctx context.Context, features []float64) (label string, confidence float64, err error) {
	start := time.Now()
	defer func() { metrics.RecordCollaboratorCall("classifier", err, time.Since(start)) }()

	var result predictResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(predictRequest{Features: features}).
		SetResult(&result).
		Post("/predict")
	if err != nil {
		return "", 0, fmt.Errorf("call classifier: %w", err)
	}
	if resp.IsError() {
		return "", 0, fmt.Errorf("classifier: status %d", resp.StatusCode())
	}
	if result.Label == "" {
		return "", 0, fmt.Errorf("classifier: empty label")
	}
	c.logger.Debug("classifier prediction",
		zap.String("label", result.Label),
		zap.Float64("confidence", result.Confidence),
	)
	return result.Label, result.Confidence, nil
}

var _ domain.Classifier = (*Client)(nil)
