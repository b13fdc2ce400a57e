package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/adapters/storage"
	"github.com/jsamuelsen/quotesync/internal/app"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

// ExportFilename is the attachment name for exports.
const ExportFilename = "quotes.json"

// importFormField is the multipart field that carries an uploaded file.
const importFormField = "file"

// TransferHandler serves import and export of the quote store.
type TransferHandler struct {
	service *app.QuoteService
}

// NewTransferHandler creates a new transfer handler.
func NewTransferHandler(service *app.QuoteService) *TransferHandler {
	return &TransferHandler{service: service}
}

// Export handles GET /api/v1/export
// Downloads the whole store as a pretty-printed JSON array.
func (h *TransferHandler) Export(c *gin.Context) {
	data, err := storage.EncodeExport(h.service.Export())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+ExportFilename+`"`)
	c.Data(http.StatusOK, "application/json", data)
}

// Import handles POST /api/v1/import
// Accepts the document as the raw body or as a multipart "file" upload and
// replaces the store with its valid entries.
func (h *TransferHandler) Import(c *gin.Context) {
	data, err := readImport(c)
	if err != nil {
		dto.HandleBindError(c, err)
		return
	}

	parsed, err := storage.ParseImport(data)
	if err != nil {
		logging.FromContext(c.Request.Context()).InfoContext(c.Request.Context(), "rejected import",
			slog.Any("error", err),
		)
		dto.HandleError(c, err)

		return
	}

	outcome := h.service.Import(c.Request.Context(), parsed.Quotes, parsed.Skipped)

	c.JSON(http.StatusOK, outcome)
}

func readImport(c *gin.Context) ([]byte, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return io.ReadAll(c.Request.Body)
	}

	header, err := c.FormFile(importFormField)
	if err != nil {
		return nil, err
	}

	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// RegisterTransferRoutes registers import and export routes.
func (h *TransferHandler) RegisterTransferRoutes(rg *gin.RouterGroup) {
	rg.GET("/export", h.Export)
	rg.POST("/import", h.Import)
}
