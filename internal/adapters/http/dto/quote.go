package dto

import (
	"strconv"
	"strings"
	"time"

	"github.com/jsamuelsen/quotebox/internal/app"
	"github.com/jsamuelsen/quotebox/internal/domain"
)

// MsgNoQuotes is shown when the corpus is empty.
const MsgNoQuotes = "No quotes found"

// SubmitQuoteForm is the POST /add/ form. Weight stays a string so the page
// can echo back exactly what was typed.
type SubmitQuoteForm struct {
	Text       string `form:"text"`
	SourceName string `form:"source_name"`
	SourceType string `form:"source_type"`
	Weight     string `form:"weight"`
}

// NewSubmitQuoteForm returns the empty form with its defaults.
func NewSubmitQuoteForm() SubmitQuoteForm {
	return SubmitQuoteForm{
		SourceType: string(domain.SourceMovie),
		Weight:     strconv.Itoa(domain.DefaultWeight),
	}
}

// Submission converts the form. Values that cannot be parsed are passed
// through in a form the domain validator rejects with its usual message.
func (f *SubmitQuoteForm) Submission() domain.Submission {
	weight, err := strconv.Atoi(strings.TrimSpace(f.Weight))
	if err != nil {
		weight = 0
	}

	return domain.Submission{
		Text:       f.Text,
		SourceName: f.SourceName,
		SourceType: parseSourceType(f.SourceType),
		Weight:     weight,
	}
}

// SubmitQuoteRequest is the JSON body of POST /api/v1/quotes.
type SubmitQuoteRequest struct {
	Text       string `json:"text"`
	SourceName string `json:"source_name"`
	SourceType string `json:"source_type"`

	// Weight defaults to 1 when omitted.
	Weight *int `json:"weight"`
}

// Submission converts the request.
func (r *SubmitQuoteRequest) Submission() domain.Submission {
	weight := domain.DefaultWeight
	if r.Weight != nil {
		weight = *r.Weight
	}

	return domain.Submission{
		Text:       r.Text,
		SourceName: r.SourceName,
		SourceType: parseSourceType(r.SourceType),
		Weight:     weight,
	}
}

func parseSourceType(raw string) domain.SourceType {
	if t, err := domain.ParseSourceType(raw); err == nil {
		return t
	}

	return domain.SourceType(raw)
}

// SubmissionFailure is returned with status 200 when a submission is
// rejected, mirroring what the form page shows.
type SubmissionFailure struct {
	Success        bool                `json:"success"`
	Errors         map[string][]string `json:"errors"`
	NonFieldErrors []string            `json:"non_field_errors"`
}

// NewSubmissionFailure flattens validation errors for the client.
func NewSubmissionFailure(errs *domain.ValidationErrors) *SubmissionFailure {
	resp := &SubmissionFailure{
		Errors:         errs.FieldErrors(),
		NonFieldErrors: errs.NonFieldErrors(),
	}

	if resp.Errors == nil {
		resp.Errors = map[string][]string{}
	}

	if resp.NonFieldErrors == nil {
		resp.NonFieldErrors = []string{}
	}

	return resp
}

// VoteResponse is the body of POST /like/:id and /dislike/:id.
type VoteResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	Likes           int    `json:"likes"`
	Dislikes        int    `json:"dislikes"`
	UserHasLiked    bool   `json:"user_has_liked"`
	UserHasDisliked bool   `json:"user_has_disliked"`
}

// NewVoteResponse describes the state a vote left behind.
func NewVoteResponse(dir domain.Direction, res *domain.VoteResult) *VoteResponse {
	return &VoteResponse{
		Success:         true,
		Message:         voteMessage(dir, res.State),
		Likes:           res.Likes,
		Dislikes:        res.Dislikes,
		UserHasLiked:    res.State.Liked(),
		UserHasDisliked: res.State.Disliked(),
	}
}

func voteMessage(dir domain.Direction, state domain.VoteState) string {
	switch {
	case state.Liked():
		return "Liked"
	case state.Disliked():
		return "Disliked"
	case dir == domain.DirectionLike:
		return "Like removed"
	default:
		return "Dislike removed"
	}
}

// NextQuoteResponse is the body of GET /next/.
type NextQuoteResponse struct {
	Success         bool   `json:"success"`
	QuoteID         int64  `json:"quote_id"`
	QuoteText       string `json:"quote_text"`
	QuoteSource     string `json:"quote_source"`
	Views           int    `json:"views"`
	Likes           int    `json:"likes"`
	Dislikes        int    `json:"dislikes"`
	UserHasLiked    bool   `json:"user_has_liked"`
	UserHasDisliked bool   `json:"user_has_disliked"`
}

// NewNextQuoteResponse combines the served quote with the visitor's vote.
func NewNextQuoteResponse(q *domain.Quote, state domain.VoteState) *NextQuoteResponse {
	return &NextQuoteResponse{
		Success:         true,
		QuoteID:         q.ID,
		QuoteText:       q.Text,
		QuoteSource:     q.SourceLabel(),
		Views:           q.Views,
		Likes:           q.Likes,
		Dislikes:        q.Dislikes,
		UserHasLiked:    state.Liked(),
		UserHasDisliked: state.Disliked(),
	}
}

// MessageResponse is a bare {success, message} body.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SourceResponse is a source in API responses.
type SourceResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Label      string `json:"label"`
	QuoteCount *int   `json:"quote_count,omitempty"`
}

// QuoteResponse is a quote in API responses.
type QuoteResponse struct {
	ID        int64           `json:"id"`
	Text      string          `json:"text"`
	Summary   string          `json:"summary"`
	Source    *SourceResponse `json:"source,omitempty"`
	Weight    int             `json:"weight"`
	Views     int             `json:"views"`
	Likes     int             `json:"likes"`
	Dislikes  int             `json:"dislikes"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewQuoteResponse converts a domain quote.
func NewQuoteResponse(q *domain.Quote) QuoteResponse {
	resp := QuoteResponse{
		ID:        q.ID,
		Text:      q.Text,
		Summary:   q.Summary(),
		Weight:    q.Weight,
		Views:     q.Views,
		Likes:     q.Likes,
		Dislikes:  q.Dislikes,
		CreatedAt: q.CreatedAt,
	}

	if q.Source != nil {
		resp.Source = &SourceResponse{
			ID:    q.Source.ID,
			Name:  q.Source.Name,
			Type:  string(q.Source.Type),
			Label: q.Source.String(),
		}
	}

	return resp
}

// NewQuoteResponses converts a slice of quotes.
func NewQuoteResponses(quotes []domain.Quote) []QuoteResponse {
	out := make([]QuoteResponse, len(quotes))
	for i := range quotes {
		out[i] = NewQuoteResponse(&quotes[i])
	}

	return out
}

// NewSourceResponses converts source summaries.
func NewSourceResponses(sources []domain.SourceSummary) []SourceResponse {
	out := make([]SourceResponse, len(sources))
	for i, s := range sources {
		count := s.QuoteCount
		out[i] = SourceResponse{
			ID:         s.ID,
			Name:       s.Name,
			Type:       string(s.Type),
			Label:      s.String(),
			QuoteCount: &count,
		}
	}

	return out
}

// OverviewResponse is the body of GET /api/v1/overview: the popular list
// and every source with its quote count.
type OverviewResponse struct {
	Quotes  []QuoteResponse  `json:"quotes"`
	Sources []SourceResponse `json:"sources"`
}

// NewOverviewResponse converts the popular page data.
func NewOverviewResponse(p *app.PopularPage) *OverviewResponse {
	return &OverviewResponse{
		Quotes:  NewQuoteResponses(p.Quotes),
		Sources: NewSourceResponses(p.Sources),
	}
}

// PopularRequest is the query of GET /api/v1/quotes/popular.
type PopularRequest struct {
	Limit int `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// SearchRequest is the query of GET /api/v1/quotes.
type SearchRequest struct {
	PaginationRequest

	Query string `form:"q" validate:"max=200"`
}

// SourcesRequest is the query of GET /api/v1/admin/sources.
type SourcesRequest struct {
	Type string `form:"type" validate:"omitempty,sourcetype"`
}
