package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/labstock/internal/domain/models"
	engine "github.com/mamadbah2/labstock/internal/inventory"
	"github.com/mamadbah2/labstock/internal/repository"
	service "github.com/mamadbah2/labstock/internal/service/inventory"
	"github.com/mamadbah2/labstock/internal/upload"
)

const previewRows = 5

// InventoryHandler exposes the inventory service over HTTP.
type InventoryHandler struct {
	svc            service.Manager
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewInventoryHandler constructs the HTTP handler adapter.
func NewInventoryHandler(svc service.Manager, maxUploadBytes int64, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, maxUploadBytes: maxUploadBytes, logger: logger}
}

type rowRequest struct {
	Fields   map[string]string `json:"fields"`
	Quantity *int              `json:"quantity"`
}

type takeRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

type quickAddRequest struct {
	Fields   map[string]string `json:"fields" binding:"required"`
	Quantity int               `json:"quantity" binding:"required"`
}

// Kinds lists the inventory schemas.
func (h *InventoryHandler) Kinds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"kinds": h.svc.Schemas()})
}

// View returns the sorted and filtered rows of one kind.
func (h *InventoryHandler) View(c *gin.Context) {
	view, err := h.svc.View(c.Request.Context(), c.Param("kind"), service.ViewQuery{
		Sort:       c.Query("sort"),
		Categories: c.QueryArray("category"),
		Packages:   c.QueryArray("package"),
		Search:     c.Query("q"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Stats returns the SKU count, total quantity and low-stock rows.
func (h *InventoryHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context(), c.Param("kind"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AppendRow adds a row.
func (h *InventoryHandler) AppendRow(c *gin.Context) {
	var req rowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	idx, err := h.svc.AppendRow(c.Request.Context(), c.Param("kind"), engine.RowEdit{Fields: req.Fields, Quantity: req.Quantity})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"index": idx})
}

// UpdateRow edits fields and quantity of one row.
func (h *InventoryHandler) UpdateRow(c *gin.Context) {
	index, ok := h.rowIndex(c)
	if !ok {
		return
	}
	var req rowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.svc.UpdateRow(c.Request.Context(), c.Param("kind"), index, engine.RowEdit{Fields: req.Fields, Quantity: req.Quantity}); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteRow removes one row.
func (h *InventoryHandler) DeleteRow(c *gin.Context) {
	index, ok := h.rowIndex(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteRow(c.Request.Context(), c.Param("kind"), index); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Take removes units from one row.
func (h *InventoryHandler) Take(c *gin.Context) {
	index, ok := h.rowIndex(c)
	if !ok {
		return
	}
	var req takeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	row, err := h.svc.Take(c.Request.Context(), c.Param("kind"), index, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"index": index, "row": row})
}

// QuickAdd adds stock for an exactly identified item.
func (h *InventoryHandler) QuickAdd(c *gin.Context) {
	var req quickAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	result, err := h.svc.QuickAdd(c.Request.Context(), c.Param("kind"), req.Fields, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

// Inspect lists the columns of an uploaded sheet with a suggested mapping.
func (h *InventoryHandler) Inspect(c *gin.Context) {
	schema, err := models.LookupSchema(c.Param("kind"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	purpose, ok := upload.ParsePurpose(c.Query("purpose"))
	if !ok {
		h.badRequest(c, fmt.Errorf("unknown purpose %q", c.Query("purpose")))
		return
	}

	sheet, ok := h.readSheet(c)
	if !ok {
		return
	}

	targets := upload.Targets(schema, purpose)
	mandatory := make([]string, 0, 2)
	for _, t := range targets {
		if schema.Mandatory(t) {
			mandatory = append(mandatory, t)
		}
	}
	preview := sheet.Rows
	if len(preview) > previewRows {
		preview = preview[:previewRows]
	}

	c.JSON(http.StatusOK, gin.H{
		"purpose":   purpose,
		"columns":   sheet.Columns,
		"rows":      len(sheet.Rows),
		"preview":   preview,
		"targets":   targets,
		"mandatory": mandatory,
		"mapping":   upload.SuggestMapping(schema, purpose, sheet.Columns),
		"none":      upload.NoColumn,
	})
}

// Intake merges an uploaded sheet into the inventory.
func (h *InventoryHandler) Intake(c *gin.Context) {
	sheet, mapping, ok := h.readMappedSheet(c)
	if !ok {
		return
	}

	result, err := h.svc.Intake(c.Request.Context(), c.Param("kind"), sheet, mapping)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ValidateBOM checks an uploaded BOM and returns the report with its token.
func (h *InventoryHandler) ValidateBOM(c *gin.Context) {
	sheet, mapping, ok := h.readMappedSheet(c)
	if !ok {
		return
	}

	pending, err := h.svc.ValidateBOM(c.Request.Context(), c.Param("kind"), sheet, mapping)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pending)
}

// DeductBOM applies a validated report.
func (h *InventoryHandler) DeductBOM(c *gin.Context) {
	var req service.DeductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if req.Token == "" {
		h.badRequest(c, errors.New("token must be provided"))
		return
	}

	result, err := h.svc.DeductBOM(c.Request.Context(), c.Param("kind"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *InventoryHandler) rowIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		h.badRequest(c, fmt.Errorf("invalid row index %q", c.Param("index")))
		return 0, false
	}
	return index, true
}

func (h *InventoryHandler) readSheet(c *gin.Context) (*upload.Sheet, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	header, err := c.FormFile("file")
	if err != nil {
		h.badRequest(c, fmt.Errorf("file upload: %w", err))
		return nil, false
	}
	file, err := header.Open()
	if err != nil {
		h.badRequest(c, fmt.Errorf("open upload: %w", err))
		return nil, false
	}
	defer file.Close()

	sheet, err := upload.Parse(header.Filename, file)
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	return sheet, true
}

func (h *InventoryHandler) readMappedSheet(c *gin.Context) (*upload.Sheet, upload.Mapping, bool) {
	sheet, ok := h.readSheet(c)
	if !ok {
		return nil, nil, false
	}

	var mapping upload.Mapping
	if err := json.Unmarshal([]byte(c.PostForm("mapping")), &mapping); err != nil {
		h.badRequest(c, fmt.Errorf("%w: mapping must be a JSON object: %w", upload.ErrMissingMapping, err))
		return nil, nil, false
	}
	return sheet, mapping, true
}

func (h *InventoryHandler) badRequest(c *gin.Context, err error) {
	h.logger.Warn("invalid request", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (h *InventoryHandler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		h.logger.Debug("request rejected", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var saveErr *repository.SaveError
	switch {
	case errors.As(err, &saveErr):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrUnknownKind),
		errors.Is(err, service.ErrReportNotFound),
		errors.Is(err, engine.ErrRowOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInsufficientStock),
		errors.Is(err, service.ErrProblemsPresent):
		return http.StatusConflict
	case errors.Is(err, upload.ErrMissingMapping),
		errors.Is(err, upload.ErrUnsupportedFormat),
		errors.Is(err, upload.ErrEmptySheet),
		errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, engine.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrStoreLocked),
		errors.Is(err, repository.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
