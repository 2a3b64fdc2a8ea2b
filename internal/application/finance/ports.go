package finance

import (
	"context"
	"time"

	"github.com/sitefund/backend/internal/domain/finance"
)

// ObjectStorageService abstracts the object store holding receipts and
// invoices. Implemented by the S3 adapter and an in-memory stub for tests.
type ObjectStorageService interface {
	// Upload stores data under the given storage key
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error

	// GenerateDownloadURL generates a presigned URL for downloading a file
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// ReceiptExtractionService pulls structured fields out of an uploaded
// receipt document. The output is untrusted: callers must treat every field
// as possibly missing or wrong.
type ReceiptExtractionService interface {
	Extract(ctx context.Context, data []byte, contentType string) (finance.ExtractedReceipt, error)
}
