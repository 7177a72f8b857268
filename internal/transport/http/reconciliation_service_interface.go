package http

import (
	"context"

	"wlrecon/internal/services"
	"wlrecon/pkg/contracts/domain"
)

// ReconciliationServiceInterface defines the operations behind the reconciliation routes
type ReconciliationServiceInterface interface {
	Upload(ctx context.Context, files []services.UploadedFile) (*services.UploadResult, error)
	Compare(ctx context.Context, sessionID string) (*services.RunSummary, error)
	Results(ctx context.Context, runID string) (*services.ResultsPreview, error)
	Download(ctx context.Context, runID string, req domain.Requirement) (*services.Download, error)
	Reset(ctx context.Context, sessionID string) error
}
