// Package validation gates every generated section behind the external
// quality validator and drives the bounded generate-validate-repair loop.
package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"article-server/internal/models"
)

// Context carries the section metadata the quality validator needs to pick
// its rule set.
type Context struct {
	SectionKey        string `json:"sectionKey"`
	SectionHeading    string `json:"sectionHeading"`
	ArticleTitle      string `json:"articleTitle"`
	Language          string `json:"language"`
	Sensitive         bool   `json:"sensitive"`
	SensitiveCategory string `json:"sensitiveCategory,omitempty"`
	MinWords          int    `json:"minWords,omitempty"`
	MaxWords          int    `json:"maxWords,omitempty"`
}

// Validator is the external quality gate.
type Validator interface {
	// Validate checks one generation attempt. A returned error is a transport
	// failure, not a rule violation.
	Validate(ctx context.Context, text string, vctx Context, passNumber int) (*models.ValidationResult, error)
}

// Compile-time check to ensure implementation satisfies the interface.
var _ Validator = (*HTTPValidatorClient)(nil)

// HTTPValidatorClient calls the quality validation service over HTTP.
type HTTPValidatorClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPValidatorClient creates an HTTP client for the validation service.
func NewHTTPValidatorClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPValidatorClient {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPValidatorClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("HTTPValidatorClient"),
	}
}

// Validate implements Validator against POST /internal/validate.
func (c *HTTPValidatorClient) Validate(ctx context.Context, text string, vctx Context, passNumber int) (*models.ValidationResult, error) {
	log := c.logger.With(zap.String("section_key", vctx.SectionKey), zap.Int("pass", passNumber))

	requestBody := struct {
		Text       string  `json:"text"`
		Context    Context `json:"context"`
		PassNumber int     `json:"passNumber"`
	}{
		Text:       text,
		Context:    vctx,
		PassNumber: passNumber,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal validation request body: %w", err)
	}

	endpointURL := c.baseURL + "/internal/validate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create validation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("Validation service request failed", zap.Error(err))
		return nil, fmt.Errorf("validation service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Warn("Validation service returned non-OK status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return nil, fmt.Errorf("validation service returned status %d", resp.StatusCode)
	}

	var result models.ValidationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode validation response: %w", err)
	}
	return &result, nil
}
