package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotebox/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotebox/internal/adapters/http/session"
	"github.com/jsamuelsen/quotebox/internal/app"
	"github.com/jsamuelsen/quotebox/internal/domain"
)

// VoteHandler serves the AJAX endpoints used by the random quote page.
type VoteHandler struct {
	quotes   *app.QuoteService
	votes    *app.VoteService
	sessions *session.Manager
}

// NewVoteHandler creates a vote handler.
func NewVoteHandler(quotes *app.QuoteService, votes *app.VoteService, sessions *session.Manager) *VoteHandler {
	return &VoteHandler{quotes: quotes, votes: votes, sessions: sessions}
}

// Like handles POST /like/:id.
//
// @Summary Toggle a like
// @Tags votes
// @Produce json
// @Param id path int true "Quote ID"
// @Success 200 {object} dto.VoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /like/{id} [post]
func (h *VoteHandler) Like(c *gin.Context) {
	h.vote(c, domain.DirectionLike)
}

// Dislike handles POST /dislike/:id.
//
// @Summary Toggle a dislike
// @Tags votes
// @Produce json
// @Param id path int true "Quote ID"
// @Success 200 {object} dto.VoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /dislike/{id} [post]
func (h *VoteHandler) Dislike(c *gin.Context) {
	h.vote(c, domain.DirectionDislike)
}

func (h *VoteHandler) vote(c *gin.Context, dir domain.Direction) {
	id, ok := quoteIDParam(c)
	if !ok {
		return
	}

	result, err := h.votes.ApplyVote(c.Request.Context(), session.From(c), id, dir)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	if err := h.sessions.Commit(c); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewVoteResponse(dir, result))
}

// Next handles GET /next/.
// It picks a quote other than the one the session last saw, falling back to
// any quote when that is the only one.
//
// @Summary Next random quote
// @Tags votes
// @Produce json
// @Success 200 {object} dto.NextQuoteResponse
// @Router /next/ [get]
func (h *VoteHandler) Next(c *gin.Context) {
	ctx := c.Request.Context()
	sess := session.From(c)

	quote, err := h.quotes.RandomQuote(ctx, sess.CurrentQuoteID)
	if errors.Is(err, domain.ErrEmptyCorpus) {
		c.JSON(http.StatusOK, dto.MessageResponse{Success: false, Message: dto.MsgNoQuotes})
		return
	}

	if err != nil {
		dto.HandleError(c, err)
		return
	}

	sess.CurrentQuoteID = quote.ID

	if err := h.sessions.Commit(c); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewNextQuoteResponse(quote, sess.VoteFor(quote.ID)))
}

// quoteIDParam parses the :id path segment. On failure it writes a 400 and
// returns false.
func quoteIDParam(c *gin.Context) (int64, bool) {
	return positiveIDParam(c, "quote")
}

func positiveIDParam(c *gin.Context, entity string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, "invalid "+entity+" id: "+strconv.Quote(c.Param("id")))
		return 0, false
	}

	return id, true
}

// RegisterVoteRoutes registers the vote and next-quote endpoints. The group
// must run the session middleware.
func (h *VoteHandler) RegisterVoteRoutes(rg *gin.RouterGroup) {
	rg.POST("/like/:id", h.Like)
	rg.POST("/dislike/:id", h.Dislike)
	rg.GET("/next/", h.Next)
}
