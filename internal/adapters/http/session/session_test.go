package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotebox/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newManager(t *testing.T) *Manager {
	t.Helper()

	m, err := NewManager(Config{
		Secret:     strings.Repeat("s", MinSecretLength),
		CookieName: "quotebox_session",
		MaxAge:     3600,
	})
	require.NoError(t, err)

	return m
}

func cookieFrom(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	return cookies[0]
}

func TestNewManager_RejectsShortSecret(t *testing.T) {
	_, err := NewManager(Config{Secret: "short", CookieName: "s"})
	assert.ErrorIs(t, err, ErrWeakSecret)
}

func TestLoad_NewVisitorGetsToken(t *testing.T) {
	m := newManager(t)

	sess := m.Load(httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	_, err := uuid.Parse(sess.ID)
	require.NoError(t, err)
	assert.Zero(t, sess.CurrentQuoteID)
	assert.Empty(t, sess.Votes)
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	m := newManager(t)

	r := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	sess := m.Load(r)
	sess.CurrentQuoteID = 42

	w := httptest.NewRecorder()
	require.NoError(t, m.Save(w, r, sess))

	cookie := cookieFrom(t, w)
	assert.Equal(t, "quotebox_session", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.NotContains(t, cookie.Value, sess.ID, "token must not be readable in the cookie")

	next := httptest.NewRequest(http.MethodGet, "/next/", http.NoBody)
	next.AddCookie(cookie)

	again := m.Load(next)
	assert.Equal(t, sess.ID, again.ID)
	assert.Equal(t, int64(42), again.CurrentQuoteID)
}

func TestLoad_TamperedCookieStartsFresh(t *testing.T) {
	m := newManager(t)

	r := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	sess := m.Load(r)
	w := httptest.NewRecorder()
	require.NoError(t, m.Save(w, r, sess))

	cookie := cookieFrom(t, w)
	cookie.Value = "x" + cookie.Value[1:]

	next := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	next.AddCookie(cookie)

	fresh := m.Load(next)
	assert.NotEqual(t, sess.ID, fresh.ID)
	assert.Zero(t, fresh.CurrentQuoteID)
}

func TestLoad_CookieSignedWithOtherSecret(t *testing.T) {
	other, err := NewManager(Config{Secret: strings.Repeat("o", MinSecretLength), CookieName: "quotebox_session"})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	sess := other.Load(r)
	w := httptest.NewRecorder()
	require.NoError(t, other.Save(w, r, sess))

	next := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	next.AddCookie(cookieFrom(t, w))

	assert.NotEqual(t, sess.ID, newManager(t).Load(next).ID)
}

func TestMiddleware_CommitPersistsChanges(t *testing.T) {
	m := newManager(t)

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/", func(c *gin.Context) {
		sess := From(c)
		sess.CurrentQuoteID++
		require.NoError(t, m.Commit(c))
		c.String(http.StatusOK, sess.ID)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)

	firstID := w.Body.String()
	cookie := cookieFrom(t, w)

	r := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	r.AddCookie(cookie)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, firstID, w.Body.String())
	assert.Equal(t, int64(2), m.Load(withCookie(cookieFrom(t, w))).CurrentQuoteID)
}

func withCookie(c *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	r.AddCookie(c)

	return r
}

func TestFrom_PanicsWithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Panics(t, func() { From(c) })
}

type stubLedger struct {
	votes map[int64]domain.VoteState
	err   error
	calls []string
}

func (l *stubLedger) LoadLedger(_ context.Context, sess *domain.Session) error {
	l.calls = append(l.calls, sess.ID)
	if l.err != nil {
		return l.err
	}

	sess.Votes = l.votes

	return nil
}

func newLedgerRouter(t *testing.T, ledger Ledger) *gin.Engine {
	t.Helper()

	m, err := NewManager(Config{
		Secret:     strings.Repeat("s", MinSecretLength),
		CookieName: "quotebox_session",
		Ledger:     ledger,
	})
	require.NoError(t, err)

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, string(From(c).VoteFor(7)))
	})

	return router
}

func TestMiddleware_LoadsLedger(t *testing.T) {
	ledger := &stubLedger{votes: map[int64]domain.VoteState{7: domain.VoteLiked}}
	router := newLedgerRouter(t, ledger)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(domain.VoteLiked), w.Body.String())
	assert.Len(t, ledger.calls, 1)
}

func TestMiddleware_LedgerFailureAborts(t *testing.T) {
	ledger := &stubLedger{err: errors.New("database is locked")}
	router := newLedgerRouter(t, ledger)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "locked")
}
