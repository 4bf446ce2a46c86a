package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotebox/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotebox/internal/app"
	"github.com/jsamuelsen/quotebox/internal/domain"
)

// QuoteHandler serves the JSON API under /api/v1.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// GetRandomQuote handles GET /api/v1/quotes/random.
// The pick counts as a view, exactly like the random quote page.
//
// @Summary Get a random quote
// @Tags quotes
// @Produce json
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/random [get]
func (h *QuoteHandler) GetRandomQuote(c *gin.Context) {
	quote, err := h.service.RandomQuote(c.Request.Context(), 0)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(quote))
}

// GetQuoteByID handles GET /api/v1/quotes/:id.
//
// @Summary Get a quote by ID
// @Tags quotes
// @Produce json
// @Param id path int true "Quote ID"
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{id} [get]
func (h *QuoteHandler) GetQuoteByID(c *gin.Context) {
	id, ok := quoteIDParam(c)
	if !ok {
		return
	}

	quote, err := h.service.GetQuote(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(quote))
}

// GetPopular handles GET /api/v1/quotes/popular.
//
// @Summary Most liked quotes
// @Tags quotes
// @Produce json
// @Param limit query int false "Number of quotes (1-100)"
// @Success 200 {array} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes/popular [get]
func (h *QuoteHandler) GetPopular(c *gin.Context) {
	var req dto.PopularRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.RespondWithBindingError(c, err)
		return
	}

	quotes, err := h.service.Popular(c.Request.Context(), req.Limit)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponses(quotes))
}

// SearchQuotes handles GET /api/v1/quotes.
// Results are ordered newest first and paged with an opaque cursor.
//
// @Summary Search quotes
// @Tags quotes
// @Produce json
// @Param q query string false "Text or source name fragment"
// @Param cursor query string false "Cursor from a previous page"
// @Param limit query int false "Page size (1-100)"
// @Success 200 {object} dto.PaginatedResponse[dto.QuoteResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [get]
func (h *QuoteHandler) SearchQuotes(c *gin.Context) {
	var req dto.SearchRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.RespondWithBindingError(c, err)
		return
	}

	after, err := req.AfterID(req.Query)
	if err != nil {
		dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, err.Error())
		return
	}

	result, err := h.service.Search(c.Request.Context(), req.Query, after, req.GetLimit())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResponse(dto.NewQuoteResponses(result.Quotes), req.Query, result.NextCursor))
}

// CreateQuote handles POST /api/v1/quotes.
// Rejected submissions answer 200 with the same error lists the form page
// shows; malformed bodies answer 400.
//
// @Summary Submit a quote
// @Tags quotes
// @Accept json
// @Produce json
// @Param body body dto.SubmitQuoteRequest true "Submission"
// @Success 201 {object} dto.QuoteResponse
// @Success 200 {object} dto.SubmissionFailure
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [post]
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req dto.SubmitQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindingError(c, err)
		return
	}

	quote, err := h.service.Submit(c.Request.Context(), req.Submission())

	var errs *domain.ValidationErrors
	if errors.As(err, &errs) {
		c.JSON(http.StatusOK, dto.NewSubmissionFailure(errs))
		return
	}

	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuoteResponse(quote))
}

// ListSources handles GET /api/v1/admin/sources.
//
// @Summary List sources with quote counts
// @Tags sources
// @Produce json
// @Param type query string false "movie, book, song or other"
// @Success 200 {array} dto.SourceResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/v1/admin/sources [get]
func (h *QuoteHandler) ListSources(c *gin.Context) {
	var req dto.SourcesRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.RespondWithBindingError(c, err)
		return
	}

	var filter domain.SourceType
	if req.Type != "" {
		// already checked by the sourcetype validator
		filter, _ = domain.ParseSourceType(req.Type)
	}

	sources, err := h.service.Sources(c.Request.Context(), filter)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSourceResponses(sources))
}

// DeleteSource handles DELETE /api/v1/admin/sources/:id.
// The source's quotes and their votes go with it.
//
// @Summary Delete a source
// @Tags sources
// @Param id path int true "Source ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/v1/admin/sources/{id} [delete]
func (h *QuoteHandler) DeleteSource(c *gin.Context) {
	id, ok := positiveIDParam(c, "source")
	if !ok {
		return
	}

	if err := h.service.DeleteSource(c.Request.Context(), id); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetOverview handles GET /api/v1/overview.
// The popular quotes and the source list are read concurrently.
//
// @Summary Popular quotes and sources
// @Tags quotes
// @Produce json
// @Success 200 {object} dto.OverviewResponse
// @Router /api/v1/overview [get]
func (h *QuoteHandler) GetOverview(c *gin.Context) {
	page, err := h.service.PopularPage(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewOverviewResponse(page))
}

// RegisterQuoteRoutes registers the API routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.SearchQuotes)
	quotes.POST("", h.CreateQuote)
	quotes.GET("/random", h.GetRandomQuote)
	quotes.GET("/popular", h.GetPopular)
	quotes.GET("/:id", h.GetQuoteByID)

	rg.GET("/overview", h.GetOverview)
}

// RegisterAdminRoutes registers the collaborator routes. rg must already
// carry the role check.
func (h *QuoteHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	sources := rg.Group("/sources")
	sources.GET("", h.ListSources)
	sources.DELETE("/:id", h.DeleteSource)
}
