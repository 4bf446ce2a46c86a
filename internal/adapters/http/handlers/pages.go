package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotebox/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotebox/internal/adapters/http/session"
	"github.com/jsamuelsen/quotebox/internal/app"
	"github.com/jsamuelsen/quotebox/internal/domain"
	"github.com/jsamuelsen/quotebox/internal/platform/logging"
)

// MsgNoQuotesYet is the empty state of the random quote page.
const MsgNoQuotesYet = "No quotes yet"

// PageHandler renders the HTML pages.
type PageHandler struct {
	quotes   *app.QuoteService
	sessions *session.Manager
}

// NewPageHandler creates a page handler. The session middleware must carry
// the vote ledger so the page can show the visitor's reaction.
func NewPageHandler(quotes *app.QuoteService, sessions *session.Manager) *PageHandler {
	return &PageHandler{quotes: quotes, sessions: sessions}
}

type indexPage struct {
	Title    string
	Quote    *domain.Quote
	Liked    bool
	Disliked bool
	Empty    string
}

type addPage struct {
	Title          string
	Form           dto.SubmitQuoteForm
	Errors         map[string][]string
	NonFieldErrors []string
	SourceTypes    []domain.SourceType
}

type popularPage struct {
	Title   string
	Quotes  []domain.Quote
	Sources []domain.SourceSummary
	Empty   string
}

type errorPage struct {
	Title   string
	Status  int
	Message string
	TraceID string
}

// Index handles GET /.
// It serves a weighted random quote, counts the view and remembers the
// quote in the session so /next/ can skip it.
func (h *PageHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	sess := session.From(c)

	quote, err := h.quotes.RandomQuote(ctx, 0)
	if errors.Is(err, domain.ErrEmptyCorpus) {
		c.HTML(http.StatusOK, "index.html", indexPage{Title: "Random quote", Empty: MsgNoQuotesYet})
		return
	}

	if err != nil {
		h.renderError(c, err)
		return
	}

	sess.CurrentQuoteID = quote.ID
	state := sess.VoteFor(quote.ID)

	if err := h.sessions.Commit(c); err != nil {
		h.renderError(c, err)
		return
	}

	c.HTML(http.StatusOK, "index.html", indexPage{
		Title:    "Random quote",
		Quote:    quote,
		Liked:    state.Liked(),
		Disliked: state.Disliked(),
	})
}

// AddForm handles GET /add/.
func (h *PageHandler) AddForm(c *gin.Context) {
	c.HTML(http.StatusOK, "add.html", newAddPage(dto.NewSubmitQuoteForm(), nil))
}

// AddSubmit handles POST /add/. A rejected submission re-renders the form
// with status 200 and every field and non-field error; an accepted one
// redirects to /.
func (h *PageHandler) AddSubmit(c *gin.Context) {
	var form dto.SubmitQuoteForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderError(c, domain.NewValidationError("", err.Error()))
		return
	}

	_, err := h.quotes.Submit(c.Request.Context(), form.Submission())

	var errs *domain.ValidationErrors
	if errors.As(err, &errs) {
		c.HTML(http.StatusOK, "add.html", newAddPage(form, errs))
		return
	}

	if err != nil {
		h.renderError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func newAddPage(form dto.SubmitQuoteForm, errs *domain.ValidationErrors) addPage {
	page := addPage{Title: "Add a quote", Form: form, SourceTypes: domain.SourceTypes}

	if errs != nil {
		page.Errors = errs.FieldErrors()
		page.NonFieldErrors = errs.NonFieldErrors()
	}

	return page
}

// Popular handles GET /popular/.
func (h *PageHandler) Popular(c *gin.Context) {
	data, err := h.quotes.PopularPage(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.HTML(http.StatusOK, "popular.html", popularPage{
		Title:   "Popular quotes",
		Quotes:  data.Quotes,
		Sources: data.Sources,
		Empty:   MsgNoQuotesYet,
	})
}

// renderError shows the HTML counterpart of the JSON error envelope.
func (h *PageHandler) renderError(c *gin.Context, err error) {
	status, resp := dto.MapDomainError(err)
	traceID := dto.GetTraceID(c)

	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "page failed",
			slog.Int("status", status),
			slog.Any("error", err),
		)
	}

	c.HTML(status, "error.html", errorPage{
		Title:   http.StatusText(status),
		Status:  status,
		Message: resp.Error.Message,
		TraceID: traceID,
	})
}

// RegisterPageRoutes registers the HTML pages. The group must run the
// session middleware.
func (h *PageHandler) RegisterPageRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.Index)
	rg.GET("/add/", h.AddForm)
	rg.POST("/add/", h.AddSubmit)
	rg.GET("/popular/", h.Popular)
}
