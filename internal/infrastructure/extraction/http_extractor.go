// Package extraction calls the external document extraction service that
// reads amounts and supplier names out of uploaded receipts.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appfinance "github.com/sitefund/backend/internal/application/finance"
	"github.com/sitefund/backend/internal/domain/finance"
	"github.com/sitefund/backend/internal/infrastructure/config"
)

// maxResponseSize is the maximum allowed response size from the extraction API (1MB)
const maxResponseSize = 1 << 20

var _ appfinance.ReceiptExtractionService = (*HTTPExtractor)(nil)

// HTTPExtractor implements ReceiptExtractionService against an HTTP
// extraction API. The API's output is untrusted; every field in the result
// may be absent, and callers decide what to do about that.
type HTTPExtractor struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPExtractor creates a new HTTPExtractor from configuration
func NewHTTPExtractor(cfg *config.ExtractionConfig, logger *zap.Logger) (*HTTPExtractor, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, errors.New("extraction base URL is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTPExtractor{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

// extractionResponse is the wire format of the extraction API. Amounts come
// back as strings so decimal precision survives the trip.
type extractionResponse struct {
	Amount       *string `json:"amount"`
	SupplierName string  `json:"supplier_name"`
	ReceiptDate  *string `json:"receipt_date"`
}

// Extract sends the document to the extraction API and returns whatever
// fields it managed to read
func (e *HTTPExtractor) Extract(ctx context.Context, data []byte, contentType string) (finance.ExtractedReceipt, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("document", "receipt")
	if err != nil {
		return finance.ExtractedReceipt{}, fmt.Errorf("failed to build request body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return finance.ExtractedReceipt{}, fmt.Errorf("failed to build request body: %w", err)
	}
	if err := writer.WriteField("content_type", contentType); err != nil {
		return finance.ExtractedReceipt{}, fmt.Errorf("failed to build request body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return finance.ExtractedReceipt{}, fmt.Errorf("failed to build request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/extract", &body)
	if err != nil {
		return finance.ExtractedReceipt{}, fmt.Errorf("failed to create extraction request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return finance.ExtractedReceipt{}, fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return finance.ExtractedReceipt{}, fmt.Errorf("extraction service returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return finance.ExtractedReceipt{}, fmt.Errorf("failed to read extraction response: %w", err)
	}

	var wire extractionResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		return finance.ExtractedReceipt{}, fmt.Errorf("failed to decode extraction response: %w", err)
	}

	return e.toDomain(wire), nil
}

// toDomain maps the wire response to the domain type, dropping fields the
// service could not produce or produced in a shape we cannot parse
func (e *HTTPExtractor) toDomain(wire extractionResponse) finance.ExtractedReceipt {
	result := finance.ExtractedReceipt{
		SupplierName: wire.SupplierName,
	}

	if wire.Amount != nil {
		amount, err := decimal.NewFromString(*wire.Amount)
		if err != nil {
			e.logger.Warn("extraction returned unparseable amount",
				zap.String("amount", *wire.Amount))
		} else {
			result.Amount = &amount
		}
	}

	if wire.ReceiptDate != nil {
		date, err := time.Parse("2006-01-02", *wire.ReceiptDate)
		if err != nil {
			e.logger.Warn("extraction returned unparseable date",
				zap.String("receipt_date", *wire.ReceiptDate))
		} else {
			result.ReceiptDate = &date
		}
	}

	return result
}
