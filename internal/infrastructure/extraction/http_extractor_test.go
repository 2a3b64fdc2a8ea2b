package extraction

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sitefund/backend/internal/infrastructure/config"
)

func newTestExtractor(t *testing.T, handler http.HandlerFunc) (*HTTPExtractor, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	extractor, err := NewHTTPExtractor(&config.ExtractionConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)

	return extractor, server
}

func TestHTTPExtractor_Extract(t *testing.T) {
	extractor, _ := newTestExtractor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/extract", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, _, err := r.FormFile("document")
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"amount":"150.80","supplier_name":"YILDIZ SITE HESABI","receipt_date":"2026-09-01"}`))
	})

	result, err := extractor.Extract(context.Background(), []byte("dekont"), "application/pdf")
	require.NoError(t, err)

	require.NotNil(t, result.Amount)
	assert.True(t, result.Amount.Equal(decimal.RequireFromString("150.80")))
	assert.Equal(t, "YILDIZ SITE HESABI", result.SupplierName)
	require.NotNil(t, result.ReceiptDate)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), *result.ReceiptDate)
}

func TestHTTPExtractor_PartialResult(t *testing.T) {
	extractor, _ := newTestExtractor(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"supplier_name":"GARANTI BANKASI"}`))
	})

	result, err := extractor.Extract(context.Background(), []byte("dekont"), "image/png")
	require.NoError(t, err)

	assert.Nil(t, result.Amount)
	assert.Nil(t, result.ReceiptDate)
	assert.Equal(t, "GARANTI BANKASI", result.SupplierName)
}

func TestHTTPExtractor_UnparseableFieldsAreDropped(t *testing.T) {
	extractor, _ := newTestExtractor(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"amount":"yüz elli","supplier_name":"X","receipt_date":"dün"}`))
	})

	result, err := extractor.Extract(context.Background(), []byte("dekont"), "image/png")
	require.NoError(t, err)

	// Garbage fields are dropped rather than failing the whole extraction
	assert.Nil(t, result.Amount)
	assert.Nil(t, result.ReceiptDate)
	assert.Equal(t, "X", result.SupplierName)
}

func TestHTTPExtractor_ServerError(t *testing.T) {
	extractor, _ := newTestExtractor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := extractor.Extract(context.Background(), []byte("dekont"), "application/pdf")
	assert.Error(t, err)
}

func TestHTTPExtractor_InvalidJSON(t *testing.T) {
	extractor, _ := newTestExtractor(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := extractor.Extract(context.Background(), []byte("dekont"), "application/pdf")
	assert.Error(t, err)
}

func TestHTTPExtractor_ContextCancellation(t *testing.T) {
	extractor, _ := newTestExtractor(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := extractor.Extract(ctx, []byte("dekont"), "application/pdf")
	assert.Error(t, err)
}

func TestNewHTTPExtractor_RequiresBaseURL(t *testing.T) {
	_, err := NewHTTPExtractor(&config.ExtractionConfig{}, zap.NewNop())
	assert.Error(t, err)
}
