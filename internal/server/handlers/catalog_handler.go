package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shrinktrack/internal/barcode"
	"github.com/mamadbah2/shrinktrack/internal/catalog"
)

// CatalogHandler serves item lookups against the master catalog index.
type CatalogHandler struct {
	index  *catalog.Index
	logger *zap.Logger
}

// NewCatalogHandler constructs the catalog lookup adapter.
func NewCatalogHandler(index *catalog.Index, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{index: index, logger: logger}
}

// Item resolves a scanned code. A miss responds with an empty object so
// the client treats it as a manual-entry item, never as a failure.
func (h *CatalogHandler) Item(c *gin.Context) {
	code := c.Param("code")
	if barcode.Normalize(code) == barcode.EmptyKey {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid-code"})
		return
	}

	item, ok := h.index.Lookup(code)
	if !ok {
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	c.JSON(http.StatusOK, item)
}
