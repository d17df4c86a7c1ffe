package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shrinktrack/internal/domain/models"
	"github.com/mamadbah2/shrinktrack/internal/service/export"
	"github.com/mamadbah2/shrinktrack/internal/service/shrink"
)

// ShrinkHandler serves the department registry and the per-list record log.
type ShrinkHandler struct {
	svc    *shrink.Service
	logger *zap.Logger
}

// NewShrinkHandler constructs the HTTP handler adapter.
func NewShrinkHandler(svc *shrink.Service, logger *zap.Logger) *ShrinkHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShrinkHandler{svc: svc, logger: logger}
}

// Departments returns the registry names in order.
func (h *ShrinkHandler) Departments(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Departments())
}

// Append records one shrink event against a list.
func (h *ShrinkHandler) Append(c *gin.Context) {
	var in models.AppendInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid append payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": "invalid request body"})
		return
	}

	rec, err := h.svc.Append(c.Request.Context(), c.Param("list"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "record": rec})
}

// Query returns a list's records, optionally filtered by ?from=&to= dates.
func (h *ShrinkHandler) Query(c *gin.Context) {
	rng, err := h.svc.ParseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	records, err := h.svc.Query(c.Request.Context(), c.Param("list"), rng)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// DeleteRange clears a list's records inside the range, or the whole list
// when no range is given.
func (h *ShrinkHandler) DeleteRange(c *gin.Context) {
	rng, err := h.svc.ParseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.svc.DeleteRange(c.Request.Context(), c.Param("list"), rng); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteOne removes a single record by id.
func (h *ShrinkHandler) DeleteOne(c *gin.Context) {
	err := h.svc.DeleteOne(c.Request.Context(), c.Param("list"), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Export streams one list's records as a CSV attachment.
func (h *ShrinkHandler) Export(c *gin.Context) {
	rng, err := h.svc.ParseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	key, err := h.svc.Resolve(c.Param("list"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	records, err := h.svc.Query(c.Request.Context(), key, rng)
	if err != nil {
		h.respondError(c, err)
		return
	}

	csvText := export.Render(export.Single(records), false)
	writeCSV(c, fmt.Sprintf("shrink_%s.csv", key), csvText)
}

// ExportAll streams every list's records as one CSV attachment with a
// leading list column.
func (h *ShrinkHandler) ExportAll(c *gin.Context) {
	rng, err := h.svc.ParseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	lists, err := h.svc.QueryAll(c.Request.Context(), rng)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var entries []export.Entry
	for _, lr := range lists {
		for _, rec := range lr.Records {
			entries = append(entries, export.Entry{List: lr.List, Record: rec})
		}
	}

	csvText := export.Render(entries, true)
	writeCSV(c, "shrink_all_lists.csv", csvText)
}

func writeCSV(c *gin.Context, filename, body string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(body))
}

// respondError maps service errors onto the HTTP status and reason string
// contract. Unexpected errors (storage failures) carry no internals.
func (h *ShrinkHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, shrink.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": err.Error()})
	case errors.Is(err, shrink.ErrInvalidList):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid-list"})
	case errors.Is(err, shrink.ErrListNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "list-not-found"})
	case errors.Is(err, shrink.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record-not-found"})
	default:
		h.logger.Error("storage operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage"})
	}
}
