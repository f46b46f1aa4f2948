package cookies

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/quill/internal/models"
)

var testCarrier = models.Carrier{Name: "user_access_token", Path: "/user", Domain: "127.0.0.1"}

func TestSink(t *testing.T) {
	expiresAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("set", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := Jar{Secure: true}.Sink(w).Set(testCarrier, "token-value", expiresAt)
		require.NoError(t, err)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		c := cookies[0]
		require.Equal(t, "user_access_token", c.Name)
		require.Equal(t, "token-value", c.Value)
		require.Equal(t, "/user", c.Path)
		require.Equal(t, "127.0.0.1", c.Domain)
		require.True(t, expiresAt.Equal(c.Expires), "cookie should expire with token")
		require.True(t, c.HttpOnly, "token cookie should be HttpOnly")
		require.True(t, c.Secure)
		require.Equal(t, http.SameSiteLaxMode, c.SameSite)
	})

	t.Run("clear", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := Jar{}.Sink(w).Clear(testCarrier)
		require.NoError(t, err)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, "user_access_token", cookies[0].Name)
		require.Empty(t, cookies[0].Value)
		require.Equal(t, -1, cookies[0].MaxAge, "cookie should be removed by client")
		require.False(t, cookies[0].Secure)
	})

	t.Run("later write wins", func(t *testing.T) {
		w := httptest.NewRecorder()
		sink := Jar{}.Sink(w)
		other := models.Carrier{Name: "blog_access_token", Path: "/blog", Domain: "127.0.0.1"}

		require.NoError(t, sink.Set(testCarrier, "first", expiresAt))
		require.NoError(t, sink.Set(other, "other", expiresAt))
		require.NoError(t, sink.Clear(testCarrier))
		require.NoError(t, sink.Set(testCarrier, "second", expiresAt))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 2, "one cookie per carrier")
		require.Equal(t, "blog_access_token", cookies[0].Name)
		require.Equal(t, "second", cookies[1].Value)
	})

	t.Run("invalid cookie", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := Jar{}.Sink(w).Set(models.Carrier{Name: "bad name;"}, "value", expiresAt)

		require.Error(t, err)
		require.Empty(t, w.Header().Values("Set-Cookie"))
	})
}

func TestJar_Read(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/user/me", nil)
	r.AddCookie(&http.Cookie{Name: "user_access_token", Value: "token-value"})

	require.Equal(t, "token-value", Jar{}.Read(r, testCarrier))
	require.Empty(t, Jar{}.Read(r, models.Carrier{Name: "user_refresh_token"}))
}
