// Package session keeps the anonymous visitor session in a signed cookie.
// The cookie carries only an opaque token and the id of the quote currently
// shown; the visitor's votes live in the store keyed by that token and are
// loaded into the session on every request.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/jsamuelsen/quotebox/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotebox/internal/domain"
	"github.com/jsamuelsen/quotebox/internal/platform/logging"
)

const (
	keyToken          = "token"
	keyCurrentQuoteID = "current_quote_id"

	// contextKey stores the loaded *domain.Session on the gin context.
	contextKey = "quotebox.session"
)

// MinSecretLength is the shortest accepted signing secret.
const MinSecretLength = 32

// ErrWeakSecret is returned for signing secrets shorter than MinSecretLength.
var ErrWeakSecret = errors.New("session secret too short")

// Ledger fills a session's Votes from durable storage.
type Ledger interface {
	LoadLedger(ctx context.Context, sess *domain.Session) error
}

// Config configures the cookie.
type Config struct {
	Secret     string
	CookieName string
	MaxAge     int
	Secure     bool

	// Ledger loads the visitor's votes in Middleware. Nil leaves Votes
	// empty.
	Ledger Ledger
}

// Manager loads and saves visitor sessions.
type Manager struct {
	store  sessions.Store
	name   string
	ledger Ledger
}

// NewManager builds a cookie-backed manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrWeakSecret, MinSecretLength, len(cfg.Secret))
	}

	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.MaxAge(cfg.MaxAge)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = cfg.Secure
	store.Options.SameSite = http.SameSiteLaxMode

	return &Manager{store: store, name: cfg.CookieName, ledger: cfg.Ledger}, nil
}

// Load returns the visitor's session. A missing, expired or tampered cookie
// yields a fresh session with a new token rather than an error.
func (m *Manager) Load(r *http.Request) *domain.Session {
	raw, err := m.store.Get(r, m.name)
	if err != nil {
		logging.FromContext(r.Context()).DebugContext(r.Context(), "discarding unreadable session cookie",
			slog.Any("error", err))
	}

	token, _ := raw.Values[keyToken].(string)
	if _, perr := uuid.Parse(token); perr != nil {
		token = uuid.NewString()
		clear(raw.Values)
		raw.Values[keyToken] = token
	}

	sess := domain.NewSession(token)
	sess.CurrentQuoteID, _ = raw.Values[keyCurrentQuoteID].(int64)

	return sess
}

// Save writes sess back to the cookie. It must run before the response
// body is written.
func (m *Manager) Save(w http.ResponseWriter, r *http.Request, sess *domain.Session) error {
	raw, _ := m.store.Get(r, m.name)

	raw.Values[keyToken] = sess.ID
	raw.Values[keyCurrentQuoteID] = sess.CurrentQuoteID

	if err := raw.Save(r, w); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	return nil
}

// Middleware loads the session and its vote ledger into the gin context and
// tags the request logger with a short session reference. A ledger that
// cannot be read aborts the request.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := m.Load(c.Request)

		ctx := logging.WithSessionRef(c.Request.Context(), sess.ID)
		c.Request = c.Request.WithContext(ctx)

		if m.ledger != nil {
			if err := m.ledger.LoadLedger(ctx, sess); err != nil {
				dto.HandleError(c, fmt.Errorf("loading vote ledger: %w", err))
				c.Abort()

				return
			}
		}

		c.Set(contextKey, sess)
		c.Next()
	}
}

// Commit saves the session held by the gin context.
func (m *Manager) Commit(c *gin.Context) error {
	return m.Save(c.Writer, c.Request, From(c))
}

// From returns the session loaded by Middleware. It panics if Middleware
// did not run, which is a routing bug.
func From(c *gin.Context) *domain.Session {
	v, ok := c.Get(contextKey)
	if !ok {
		panic("session: Middleware not installed")
	}

	return v.(*domain.Session)
}
