package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"resume-matcher/internal/api/middleware"
	"resume-matcher/internal/document"
	apperrors "resume-matcher/internal/errors"
	"resume-matcher/internal/logger"
	"resume-matcher/internal/models"
	"resume-matcher/internal/objectstore"
	"resume-matcher/internal/search"
)

// multipart field carrying the documents on /parse and /batch-upload
const filesField = "resumes"

type ResumeService interface {
	ParseNow(ctx context.Context, ownerID int64, sources []document.Source) ([]models.ResumeRecord, error)
	Get(ctx context.Context, caller models.User, id int64) (*models.ResumeRecord, error)
	Public(ctx context.Context) ([]models.ResumeRecord, error)
	Mine(ctx context.Context, caller models.User) ([]models.ResumeRecord, error)
}

type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]models.SearchResult, error)
}

type Composer interface {
	Compose(ctx context.Context, caller models.User, resumeID int64) (string, error)
}

type UploadStore interface {
	CreateUpload(ctx context.Context, rec *models.UploadRecord) error
	UploadsByOwner(ctx context.Context, ownerID int64) ([]models.UploadRecord, error)
}

type APIHandler struct {
	resumes        ResumeService
	search         Searcher
	outreach       Composer
	uploads        UploadStore
	files          objectstore.FileStorer
	maxUploadBytes int64
	now            func() time.Time
}

func NewAPIHandler(resumes ResumeService, searcher Searcher, composer Composer, uploads UploadStore, files objectstore.FileStorer, maxUploadBytes int64) *APIHandler {
	return &APIHandler{
		resumes:        resumes,
		search:         searcher,
		outreach:       composer,
		uploads:        uploads,
		files:          files,
		maxUploadBytes: maxUploadBytes,
		now:            time.Now,
	}
}

type uploadedFile struct {
	name        string
	contentType string
	data        []byte
}

type uploadAccepted struct {
	ID       uuid.UUID `json:"id"`
	Filename string    `json:"filename"`
	Status   string    `json:"status"`
}

type searchRequest struct {
	QueryText    string `json:"query_text"`
	EnglishQuery string `json:"english_query"`
	TopK         int    `json:"top_k"`
}

type outreachRequest struct {
	ResumeID int64 `json:"resume_id" binding:"required"`
}

// ParseResumes runs extraction on the request path and stores the results.
func (h *APIHandler) ParseResumes(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	files, err := h.readFiles(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	sources := make([]document.Source, 0, len(files))
	for _, f := range files {
		sources = append(sources, document.FromBytes(f.name, f.contentType, f.data))
	}

	saved, err := h.resumes.ParseNow(c.Request.Context(), user.ID, sources)
	if err != nil {
		h.fail(c, err)
		return
	}

	ids := make([]int64, 0, len(saved))
	for _, rec := range saved {
		ids = append(ids, rec.ID)
	}
	c.JSON(http.StatusOK, gin.H{"message": "resumes parsed successfully", "resume_ids": ids})
}

// BatchUpload stores the raw files and queues them for the ingestion worker.
func (h *APIHandler) BatchUpload(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	files, err := h.readFiles(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	log := middleware.LoggerFrom(c)

	accepted := make([]uploadAccepted, 0, len(files))
	for _, f := range files {
		id, err := uuid.NewV7()
		if err != nil {
			h.fail(c, err)
			return
		}
		key := objectstore.UploadKey(user.ID, id, document.Extension(f.contentType))

		if err := h.files.Upload(ctx, bytes.NewReader(f.data), key, f.contentType); err != nil {
			h.fail(c, apperrors.Upstream("failed to store upload", err))
			return
		}

		now := h.now().UTC()
		rec := &models.UploadRecord{
			ID:          id,
			OwnerID:     user.ID,
			StorageKey:  key,
			Filename:    f.name,
			ContentType: f.contentType,
			Status:      models.StatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := h.uploads.CreateUpload(ctx, rec); err != nil {
			if delErr := h.files.Delete(context.WithoutCancel(ctx), key); delErr != nil {
				log.Warn("failed to remove orphaned upload", zap.String("storage_key", key), zap.Error(delErr))
			}
			h.fail(c, err)
			return
		}

		log.Info("upload queued", logger.UploadFields(id, user.ID)...)
		accepted = append(accepted, uploadAccepted{ID: id, Filename: f.name, Status: rec.Status.String()})
	}

	c.JSON(http.StatusAccepted, gin.H{"uploads": accepted})
}

func (h *APIHandler) PublicResumes(c *gin.Context) {
	if _, ok := middleware.CurrentUser(c); !ok {
		AbortUnauthorized(c)
		return
	}

	resumes, err := h.resumes.Public(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resumes)
}

func (h *APIHandler) MyResumes(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	resumes, err := h.resumes.Mine(c.Request.Context(), user)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resumes)
}

func (h *APIHandler) MyUploads(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	uploads, err := h.uploads.UploadsByOwner(c.Request.Context(), user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, uploads)
}

func (h *APIHandler) GetResume(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		BadRequest(c, "invalid resume id")
		return
	}

	rec, err := h.resumes.Get(c.Request.Context(), user, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *APIHandler) Search(c *gin.Context) {
	if _, ok := middleware.CurrentUser(c); !ok {
		AbortUnauthorized(c)
		return
	}

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid search request")
		return
	}

	query := strings.TrimSpace(req.QueryText)
	if query == "" {
		query = strings.TrimSpace(req.EnglishQuery)
	}
	if query == "" {
		BadRequest(c, "query_text is required")
		return
	}
	if err := search.ValidateTopK(req.TopK); err != nil {
		h.fail(c, err)
		return
	}

	results, err := h.search.Search(c.Request.Context(), query, req.TopK)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *APIHandler) OutreachEmail(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req outreachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "resume_id is required")
		return
	}

	email, err := h.outreach.Compose(c.Request.Context(), user, req.ResumeID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"email": email})
}

func (h *APIHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": user.ID, "role": user.Role})
}

// readFiles loads every file of the multipart field into memory, bounded by
// maxUploadBytes for the whole request.
func (h *APIHandler) readFiles(c *gin.Context) ([]uploadedFile, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.Validation("upload exceeds size limit")
		}
		return nil, apperrors.InvalidInput("invalid multipart form", err)
	}

	headers := form.File[filesField]
	if len(headers) == 0 {
		return nil, apperrors.Validation("no resumes provided")
	}

	files := make([]uploadedFile, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			return nil, apperrors.InvalidInput("failed to read "+fh.Filename, err)
		}
		if len(data) == 0 {
			return nil, apperrors.Validation(fh.Filename + " is empty")
		}
		files = append(files, uploadedFile{
			name:        fh.Filename,
			contentType: document.DetectContentType(fh.Header.Get("Content-Type"), fh.Filename, data),
			data:        data,
		})
	}
	return files, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// fail renders err with the status its kind maps to. Server side failures
// are logged with their cause; the caller only sees the public message.
func (h *APIHandler) fail(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error("request failed", zap.Error(err))
	}
	Error(c, status, apperrors.PublicMessage(err))
}
