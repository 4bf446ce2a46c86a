package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotebox/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotebox/internal/adapters/http/session"
	"github.com/jsamuelsen/quotebox/internal/app"
	"github.com/jsamuelsen/quotebox/internal/platform/config"
	"github.com/jsamuelsen/quotebox/internal/storage/sqlite"
	"github.com/jsamuelsen/quotebox/internal/storage/sqlite/sqlitetest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testEnv wires the handlers to a migrated throwaway store and remembers the
// visitor's cookie between requests, the way a browser would.
type testEnv struct {
	store   *sqlite.Store
	quotes  *app.QuoteService
	votes   *app.VoteService
	router  *gin.Engine
	cookies []*http.Cookie
	headers map[string]string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := sqlitetest.New(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	quotes := app.NewQuoteService(app.QuoteServiceConfig{Store: store, Logger: logger})
	votes := app.NewVoteService(app.VoteServiceConfig{Store: store, Logger: logger})

	sessions, err := session.NewManager(session.Config{
		Secret:     strings.Repeat("s", session.MinSecretLength),
		CookieName: "quotebox_session",
		MaxAge:     3600,
		Ledger:     votes,
	})
	require.NoError(t, err)

	tmpl, err := LoadTemplates()
	require.NoError(t, err)

	router := gin.New()
	router.SetHTMLTemplate(tmpl)

	web := router.Group("/", sessions.Middleware())
	NewPageHandler(quotes, sessions).RegisterPageRoutes(web)
	NewVoteHandler(quotes, votes, sessions).RegisterVoteRoutes(web)
	api := NewQuoteHandler(quotes)
	api.RegisterQuoteRoutes(router.Group("/api/v1"))
	api.RegisterAdminRoutes(router.Group("/api/v1/admin", middleware.RequireRole(nil, config.DefaultAdminRole)))

	return &testEnv{store: store, quotes: quotes, votes: votes, router: router}
}

// newVisitor returns a copy of the environment with an empty cookie jar.
func (e *testEnv) newVisitor() *testEnv {
	other := *e
	other.cookies = nil

	return &other
}

// asAdmin returns a copy of the environment whose requests carry the
// gateway headers of an admin collaborator.
func (e *testEnv) asAdmin() *testEnv {
	other := *e
	other.headers = map[string]string{
		config.DefaultAuthSubjectHeader: "editor",
		config.DefaultAuthRolesHeader:   config.DefaultAdminRole,
	}

	return &other
}

func (e *testEnv) do(method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	for k, v := range e.headers {
		req.Header.Set(k, v)
	}

	for _, c := range e.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		e.cookies = cookies
	}

	return w
}

func (e *testEnv) get(target string) *httptest.ResponseRecorder {
	return e.do(http.MethodGet, target, http.NoBody, "")
}

func (e *testEnv) post(target string) *httptest.ResponseRecorder {
	return e.do(http.MethodPost, target, http.NoBody, "")
}

func (e *testEnv) postForm(target, form string) *httptest.ResponseRecorder {
	return e.do(http.MethodPost, target, strings.NewReader(form), "application/x-www-form-urlencoded")
}

func (e *testEnv) postJSON(target, body string) *httptest.ResponseRecorder {
	return e.do(http.MethodPost, target, strings.NewReader(body), "application/json")
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())

	return v
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func indexOf(s, substr string) int {
	i := strings.Index(s, substr)
	if i < 0 {
		panic("substring not found: " + substr)
	}

	return i
}
