// Package metrics holds the Prometheus collectors for quote activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/quotebox/internal/domain"
)

const namespace = "quotebox"

// Collectors records quote views, votes and submissions.
type Collectors struct {
	views       prometheus.Counter
	votes       *prometheus.CounterVec
	submissions *prometheus.CounterVec
}

// New registers the collectors with reg. Passing prometheus.DefaultRegisterer
// exposes them on the default /-/metrics handler; tests pass a fresh
// prometheus.NewRegistry to stay isolated.
func New(reg prometheus.Registerer) *Collectors {
	factory := promauto.With(reg)

	return &Collectors{
		views: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_views_total",
			Help:      "Number of quotes shown to visitors.",
		}),
		votes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_total",
			Help:      "Number of like and dislike actions by resulting state.",
		}, []string{"direction", "state"}),
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Number of quote submissions by outcome.",
		}, []string{"outcome"}),
	}
}

// QuoteViewed counts one displayed quote.
func (c *Collectors) QuoteViewed() {
	c.views.Inc()
}

// VoteApplied counts one vote action.
func (c *Collectors) VoteApplied(dir domain.Direction, state domain.VoteState) {
	c.votes.WithLabelValues(string(dir), state.String()).Inc()
}

// SubmissionRecorded counts one submission.
func (c *Collectors) SubmissionRecorded(outcome string) {
	c.submissions.WithLabelValues(outcome).Inc()
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
