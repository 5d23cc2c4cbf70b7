package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/adapters/render"
	"github.com/jsamuelsen/quotesync/internal/app"
	"github.com/jsamuelsen/quotesync/internal/domain"
)

// QuoteHandler handles quote and category endpoints.
type QuoteHandler struct {
	quotes   *app.Reconciler
	renderer *render.Renderer
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(quotes *app.Reconciler) *QuoteHandler {
	return &QuoteHandler{
		quotes: quotes,
		// Cards rendered for HTTP clients never carry ANSI colors.
		renderer: render.New(io.Discard, 0),
	}
}

// ListQuotes handles GET /api/v1/quotes
// Returns the quotes in a category, defaulting to the selected one.
// Clients sending Accept: text/plain get rendered cards instead of JSON.
//
// @Summary List quotes
// @Tags quotes
// @Produce json,plain
// @Param category query string false "Category filter, 'All' for every quote"
// @Success 200 {object} dto.QuoteListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	category, ok := h.category(c)
	if !ok {
		return
	}

	quotes := h.quotes.Filter(category)

	if c.NegotiateFormat(gin.MIMEJSON, gin.MIMEPlain) == gin.MIMEPlain {
		c.String(http.StatusOK, h.renderer.Quotes(category, quotes))
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteListResponse(category, quotes))
}

// GetRandomQuote handles GET /api/v1/quotes/random
// Returns one quote chosen at random from a category.
//
// @Summary Get a random quote
// @Tags quotes
// @Produce json,plain
// @Param category query string false "Category filter"
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/random [get]
func (h *QuoteHandler) GetRandomQuote(c *gin.Context) {
	category, ok := h.category(c)
	if !ok {
		return
	}

	quote, err := h.quotes.Random(category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	if c.NegotiateFormat(gin.MIMEJSON, gin.MIMEPlain) == gin.MIMEPlain {
		c.String(http.StatusOK, h.renderer.Quote(quote))
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(quote))
}

// CreateQuote handles POST /api/v1/quotes
// Adds a local-only quote; it is pushed on the next sync cycle.
//
// @Summary Add a quote
// @Tags quotes
// @Accept json
// @Produce json
// @Param request body dto.CreateQuoteRequest true "Quote"
// @Success 201 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [post]
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	quote, err := h.quotes.Add(c.Request.Context(), req.Text, req.Category)
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
	c.JSON(http.StatusOK, dto.CategoriesResponse{
		Categories: h.quotes.Categories(),
		Selected:   h.quotes.SelectedCategory(),
	})
}

// SelectCategory handles PUT /api/v1/categories/selected
// Persists the category filter used when a request names none.
//
// @Summary Select the active category
// @Tags categories
// @Accept json
// @Produce json
// @Param request body dto.SelectCategoryRequest true "Category"
// @Success 200 {object} dto.CategoriesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/categories/selected [put]
func (h *QuoteHandler) SelectCategory(c *gin.Context) {
	var req dto.SelectCategoryRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	if err := h.quotes.SelectCategory(c.Request.Context(), req.Category); err != nil {
		dto.HandleError(c, err)
		return
	}

	h.ListCategories(c)
}

// category resolves the category query parameter. A missing parameter means
// the persisted selection; an explicit empty value means all quotes.
func (h *QuoteHandler) category(c *gin.Context) (string, bool) {
	var q dto.QuoteListQuery
	if err := dto.BindQueryAndValidate(c, &q); err != nil {
		dto.HandleBindError(c, err)
		return "", false
	}

	if q.Category == nil {
		return h.quotes.SelectedCategory(), true
	}

	if *q.Category == "" {
		return domain.CategoryAll, true
	}

	return *q.Category, true
}

// RegisterQuoteRoutes registers quote and category routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.ListQuotes)
	quotes.POST("", h.CreateQuote)
	quotes.GET("/random", h.GetRandomQuote)

	categories := rg.Group("/categories")
	categories.GET("", h.ListCategories)
	categories.PUT("/selected", h.SelectCategory)
}
