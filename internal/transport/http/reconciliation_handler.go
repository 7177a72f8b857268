package http

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "wlrecon/internal/errors"
	"wlrecon/internal/middleware"
	"wlrecon/internal/services"
	"wlrecon/pkg/contracts/domain"
)

// UploadField is the multipart field carrying the input files
const UploadField = "files"

// multipartMemory is kept in memory before spilling file parts to disk
const multipartMemory = 32 << 20

// CompareRequest is the body of POST /api/compare
type CompareRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
}

// ResetRequest is the body of POST /api/reset
type ResetRequest struct {
	SessionID string `json:"session_id" validate:"omitempty,uuid"`
}

// UploadResponse is returned by POST /api/upload
type UploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	*services.UploadResult
}

// CompareResponse is returned by POST /api/compare
type CompareResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	*services.RunSummary
}

// ResultsResponse is returned by GET /api/results/{runID}
type ResultsResponse struct {
	Success bool `json:"success"`
	*services.ResultsPreview
}

// MessageResponse is a bare acknowledgement
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ReconciliationHandler handles upload, compare, results, download and reset
type ReconciliationHandler struct {
	service      ReconciliationServiceInterface
	validator    *middleware.Validator
	errorHandler *apierrors.ErrorHandler
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewReconciliationHandler creates the handler. maxBodyBytes caps a whole
// upload request; zero disables the cap.
func NewReconciliationHandler(service ReconciliationServiceInterface, maxBodyBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReconciliationHandler {
	return &ReconciliationHandler{
		service:      service,
		validator:    middleware.NewValidator(logger),
		errorHandler: errorHandler,
		maxBodyBytes: maxBodyBytes,
		logger:       logger.With(slog.String("component", "reconciliation_handler")),
	}
}

// Routes returns the reconciliation routes
func (h *ReconciliationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers the reconciliation routes on an existing router
func (h *ReconciliationHandler) RegisterRoutes(r chi.Router) {
	r.Post("/upload", h.Upload)
	r.Post("/compare", h.Compare)
	r.Post("/reset", h.Reset)

	r.Route("/results/{runID}", func(r chi.Router) {
		r.Use(h.RunCtx)
		r.Get("/", h.Results)
	})
	r.Route("/download/{runID}/{requirement}", func(r chi.Router) {
		r.Use(h.RunCtx)
		r.Get("/", h.Download)
	})
}

// RunCtx middleware rejects empty run IDs before they reach the service
func (h *ReconciliationHandler) RunCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "runID") == "" {
			h.errorHandler.HandleError(w, r, apierrors.NewValidationError("run ID is required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Upload handles POST /api/upload
func (h *ReconciliationHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusRequestEntityTooLarge,
				"PAYLOAD_TOO_LARGE",
				"Request body exceeds maximum allowed size",
				map[string]interface{}{"max_size": tooLarge.Limit},
			))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[UploadField]
	if len(headers) == 0 {
		h.errorHandler.HandleError(w, r, apierrors.NewValidationError(
			"No files provided. Please upload all required files."))
		return
	}

	files := make([]services.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
		defer f.Close()
		files = append(files, uploadedFile(fh, f))
	}

	h.logger.InfoContext(r.Context(), "Received files for upload", slog.Int("count", len(files)))

	result, err := h.service.Upload(r.Context(), files)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, UploadResponse{
		Success:      true,
		Message:      "Files uploaded and validated successfully",
		UploadResult: result,
	})
}

func uploadedFile(fh *multipart.FileHeader, f multipart.File) services.UploadedFile {
	return services.UploadedFile{Name: fh.Filename, Size: fh.Size, Reader: f}
}

// Compare handles POST /api/compare
func (h *ReconciliationHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	summary, err := h.service.Compare(r.Context(), req.SessionID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, CompareResponse{
		Success:    true,
		Message:    "Comparison completed successfully",
		RunSummary: summary,
	})
}

// Results handles GET /api/results/{runID}
func (h *ReconciliationHandler) Results(w http.ResponseWriter, r *http.Request) {
	preview, err := h.service.Results(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, ResultsResponse{Success: true, ResultsPreview: preview})
}

// Download handles GET /api/download/{runID}/{requirement}
func (h *ReconciliationHandler) Download(w http.ResponseWriter, r *http.Request) {
	req, err := domain.ParseRequirement(chi.URLParam(r, "requirement"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest,
			"VALIDATION_FAILED",
			"Invalid requirement type",
			err.Error(),
		))
		return
	}

	dl, err := h.service.Download(r.Context(), chi.URLParam(r, "runID"), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(dl.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(dl.Data); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to write download",
			slog.String("file", dl.FileName),
			slog.String("error", err.Error()))
	}
}

// Reset handles POST /api/reset
func (h *ReconciliationHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if req.SessionID != "" {
		if err := h.service.Reset(r.Context(), req.SessionID); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
	}

	render.JSON(w, r, MessageResponse{Success: true, Message: "Session reset successfully"})
}
