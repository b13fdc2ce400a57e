package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/app"
	"github.com/jsamuelsen/quotesync/internal/domain"
)

// QuoteHandler handles quote-related HTTP endpoints.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// ListQuotes handles GET /api/v1/quotes
// Returns quotes in store order, optionally filtered by category.
//
// @Summary List quotes
// @Tags quotes
// @Produce json
// @Param category query string false "Category filter, default all"
// @Param cursor query string false "Cursor from a previous page"
// @Param limit query int false "Page size (1-100)"
// @Success 200 {object} dto.Page[dto.QuoteResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	var req dto.ListQuotesRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	page, err := dto.QuotePage(h.service.List(req.Category), req.PageQuery)
	if err != nil {
		dto.HandleBindError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetRandomQuote handles GET /api/v1/quotes/random
// Picks a quote without changing what the widget shows.
//
// @Summary Get a random quote
// @Tags quotes
// @Produce json
// @Param category query string false "Category, default all"
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/random [get]
func (h *QuoteHandler) GetRandomQuote(c *gin.Context) {
	quote, err := h.service.RandomIn(c.DefaultQuery("category", domain.CategoryAll))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(quote))
}

// ShowNext handles POST /api/v1/quotes/next
// Shows another quote from the selected category, like the widget's
// "new quote" button.
//
// @Summary Show the next quote
// @Tags quotes
// @Produce json
// @Success 200 {object} dto.DisplayResponse
// @Router /api/v1/quotes/next [post]
func (h *QuoteHandler) ShowNext(c *gin.Context) {
	display := h.service.ShowRandom(c.Request.Context())

	c.JSON(http.StatusOK, dto.NewDisplayResponse(display.Quote, display.Message))
}

// AddQuote handles POST /api/v1/quotes
//
// @Summary Add a quote
// @Tags quotes
// @Accept json
// @Produce json
// @Param quote body dto.AddQuoteRequest true "Quote"
// @Success 201 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [post]
func (h *QuoteHandler) AddQuote(c *gin.Context) {
	var req dto.AddQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	quote, err := h.service.AddQuote(c.Request.Context(), req.Text, req.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuoteResponse(quote))
}

// ListCategories handles GET /api/v1/categories
//
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {object} dto.CategoriesResponse
// @Router /api/v1/categories [get]
func (h *QuoteHandler) ListCategories(c *gin.Context) {
	categories, selected := h.service.Categories()

	c.JSON(http.StatusOK, dto.CategoriesResponse{Categories: categories, Selected: selected})
}

// SelectCategory handles PUT /api/v1/categories/selected
//
// @Summary Change the category filter
// @Tags categories
// @Accept json
// @Produce json
// @Param body body dto.SelectCategoryRequest true "Category"
// @Success 200 {object} dto.DisplayResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/categories/selected [put]
func (h *QuoteHandler) SelectCategory(c *gin.Context) {
	var req dto.SelectCategoryRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	display := h.service.SelectCategory(c.Request.Context(), req.Category)

	c.JSON(http.StatusOK, dto.NewDisplayResponse(display.Quote, display.Message))
}

// RegisterQuoteRoutes registers quote and category routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.ListQuotes)
	quotes.POST("", h.AddQuote)
	quotes.GET("/random", h.GetRandomQuote)
	quotes.POST("/next", h.ShowNext)

	categories := rg.Group("/categories")
	categories.GET("", h.ListCategories)
	categories.PUT("/selected", h.SelectCategory)
}
