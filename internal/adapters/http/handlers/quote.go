package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotebook/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotebook/internal/app"
	"github.com/jsamuelsen/quotebook/internal/domain"
)

const (
	// exportFilename is the attachment name of GET /quotes/export.
	exportFilename = "quotes.json"

	// importFormField is the multipart field carrying an uploaded quotes file.
	importFormField = "file"

	noMatchMessage = "No quotes available for this category."
)

// QuoteHandler handles quote-related HTTP endpoints.
type QuoteHandler struct {
	service *app.QuoteService
	notices *app.Notices
}

// NewQuoteHandler creates a new quote handler. notices may be nil, in which
// case the notice endpoints report an empty list.
func NewQuoteHandler(service *app.QuoteService, notices *app.Notices) *QuoteHandler {
	return &QuoteHandler{
		service: service,
		notices: notices,
	}
}

// ListQuotes handles GET /api/v1/quotes
// Returns the stored quotes in insertion order, one page at a time.
//
// @Summary List quotes
// @Tags quotes
// @Produce json
// @Param category query string false "Category filter, or all"
// @Param limit query int false "Page size (1-100)"
// @Param cursor query string false "Cursor from a previous page"
// @Success 200 {object} dto.PaginatedResponse[dto.QuoteResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	var req dto.ListQuotesRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.RespondWithBindingError(c, err)
		return
	}

	page, err := dto.QuotePage(h.service.Quotes(req.Category), req.PaginationRequest)
	if err != nil {
		dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, "invalid cursor")
		return
	}

	c.JSON(http.StatusOK, page)
}

// AddQuote handles POST /api/v1/quotes
// Stores a new quote. When publishing is enabled the quote is stored only
// after the remote source accepted it.
//
// @Summary Add a quote
// @Tags quotes
// @Accept json
// @Produce json
// @Param quote body dto.AddQuoteRequest true "Quote to add"
// @Success 201 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/v1/quotes [post]
func (h *QuoteHandler) AddQuote(c *gin.Context) {
	var req dto.AddQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindingError(c, err)
		return
	}

	quote, err := h.service.AddQuote(c.Request.Context(), req.Text, req.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromQuote(quote))
}

// GetRandomQuote handles GET /api/v1/quotes/random
// Picks a random quote from the requested category, or from the active filter
// when none is given. An empty match is not an error.
//
// @Summary Get a random quote
// @Tags quotes
// @Produce json
// @Param category query string false "Category, or all"
// @Success 200 {object} dto.RandomQuoteResponse
// @Router /api/v1/quotes/random [get]
func (h *QuoteHandler) GetRandomQuote(c *gin.Context) {
	category := c.Query("category")
	if category == "" {
		category = h.service.Filter()
	}

	quote, ok := h.service.RandomQuote(c.Request.Context(), category)
	if !ok {
		c.JSON(http.StatusOK, dto.RandomQuoteResponse{
			Filter:  category,
			Message: noMatchMessage,
		})

		return
	}

	resp := dto.FromQuote(quote)
	c.JSON(http.StatusOK, dto.RandomQuoteResponse{Quote: &resp, Filter: category})
}

// GetLastViewed handles GET /api/v1/quotes/last-viewed
//
// @Summary Get the last quote shown in this session
// @Tags quotes
// @Produce json
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/last-viewed [get]
func (h *QuoteHandler) GetLastViewed(c *gin.Context) {
	quote, ok := h.service.LastViewed()
	if !ok {
		dto.RespondWithErrorCode(c, dto.ErrorCodeNotFound, "no quote has been viewed in this session")
		return
	}

	c.JSON(http.StatusOK, dto.FromQuote(quote))
}

// ExportQuotes handles GET /api/v1/quotes/export
// Downloads the whole store as a pretty-printed JSON array.
//
// @Summary Export quotes
// @Tags quotes
// @Produce json
// @Success 200 {array} dto.QuoteResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/quotes/export [get]
func (h *QuoteHandler) ExportQuotes(c *gin.Context) {
	data, err := h.service.ExportQuotes(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename))
	c.Data(http.StatusOK, "application/json", data)
}

// ImportQuotes handles POST /api/v1/quotes/import
// Accepts a JSON array either as the raw request body or as the "file" part
// of a multipart form. The policy query parameter overrides the configured one.
//
// @Summary Import quotes
// @Tags quotes
// @Accept json,mpfd
// @Produce json
// @Param policy query string false "replace or append"
// @Success 200 {object} dto.ImportResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 413 {object} dto.ErrorResponse
// @Router /api/v1/quotes/import [post]
func (h *QuoteHandler) ImportQuotes(c *gin.Context) {
	data, err := readImportPayload(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			dto.RespondWithErrorCode(c, dto.ErrorCodePayloadTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))

			return
		}

		dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, err.Error())

		return
	}

	result, err := h.service.ImportQuotes(c.Request.Context(), data, c.Query("policy"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ImportResponse{
		Imported: result.Imported,
		Total:    result.Total,
		Policy:   string(result.Policy),
	})
}

func readImportPayload(c *gin.Context) ([]byte, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}

		return data, nil
	}

	header, err := c.FormFile(importFormField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, fmt.Errorf("missing %q form file", importFormField)
	}

	if err != nil {
		return nil, fmt.Errorf("reading multipart form: %w", err)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("opening uploaded file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading uploaded file: %w", err)
	}

	return data, nil
}

// ListCategories handles GET /api/v1/categories
//
// @Summary List categories and filter options
// @Tags categories
// @Produce json
// @Success 200 {object} dto.CategoriesResponse
// @Router /api/v1/categories [get]
func (h *QuoteHandler) ListCategories(c *gin.Context) {
	categories := h.service.Categories()

	c.JSON(http.StatusOK, dto.CategoriesResponse{
		Categories: categories,
		Options:    domain.FilterOptions(categories),
		Filter:     h.service.Filter(),
	})
}

// GetFilter handles GET /api/v1/filter
func (h *QuoteHandler) GetFilter(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FilterResponse{Category: h.service.Filter()})
}

// SetFilter handles PUT /api/v1/filter
// The category must be "all" or one currently present in the store.
//
// @Summary Set the category filter
// @Tags categories
// @Accept json
// @Produce json
// @Param filter body dto.FilterRequest true "Filter"
// @Success 200 {object} dto.FilterResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/filter [put]
func (h *QuoteHandler) SetFilter(c *gin.Context) {
	var req dto.FilterRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindingError(c, err)
		return
	}

	if err := h.service.SetFilter(c.Request.Context(), req.Category); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FilterResponse{Category: req.Category})
}

// Sync handles POST /api/v1/sync
// Runs one reconciliation cycle against the remote source now.
//
// @Summary Sync with the remote source
// @Tags sync
// @Produce json
// @Success 200 {object} dto.SyncResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/sync [post]
func (h *QuoteHandler) Sync(c *gin.Context) {
	result, err := h.service.Sync(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SyncResponse{
		Added:      result.Added,
		Total:      result.Total,
		DurationMS: result.Duration.Milliseconds(),
	})
}

// ListNotices handles GET /api/v1/notices
func (h *QuoteHandler) ListNotices(c *gin.Context) {
	resp := []dto.NoticeResponse{}

	if h.notices != nil {
		for _, n := range h.notices.List() {
			resp = append(resp, dto.NoticeResponse{
				ID:      n.ID,
				Level:   string(n.Level),
				Message: n.Message,
				At:      n.At,
			})
		}
	}

	c.JSON(http.StatusOK, resp)
}

// DismissNotice handles DELETE /api/v1/notices/:id
func (h *QuoteHandler) DismissNotice(c *gin.Context) {
	if h.notices == nil || !h.notices.Dismiss(c.Param("id")) {
		dto.RespondWithErrorCode(c, dto.ErrorCodeNotFound, "notice not found")
		return
	}

	c.Status(http.StatusNoContent)
}

// EndSession handles DELETE /api/v1/session
// Forgets the last viewed quote.
func (h *QuoteHandler) EndSession(c *gin.Context) {
	h.service.EndSession(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// RegisterQuoteRoutes registers the quote API on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.ListQuotes)
	quotes.POST("", h.AddQuote)
	quotes.GET("/random", h.GetRandomQuote)
	quotes.GET("/last-viewed", h.GetLastViewed)
	quotes.GET("/export", h.ExportQuotes)
	quotes.POST("/import", h.ImportQuotes)

	rg.GET("/categories", h.ListCategories)
	rg.GET("/filter", h.GetFilter)
	rg.PUT("/filter", h.SetFilter)
	rg.POST("/sync", h.Sync)
	rg.GET("/notices", h.ListNotices)
	rg.DELETE("/notices/:id", h.DismissNotice)
	rg.DELETE("/session", h.EndSession)
}
