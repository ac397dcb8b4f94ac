package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seenRequest struct {
	method        string
	path          string
	authorization string
	contentType   string
	custom        string
	body          string
}

func recordingServer(t *testing.T, status int, reply string) (*httptest.Server, chan seenRequest) {
	t.Helper()
	seen := make(chan seenRequest, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen <- seenRequest{
			method:        r.Method,
			path:          r.URL.Path,
			authorization: r.Header.Get("Authorization"),
			contentType:   r.Header.Get("Content-Type"),
			custom:        r.Header.Get("X-Trace"),
			body:          string(body),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func validSession() *Session {
	return &Session{User: User{ID: "u1", Role: "BUYER"}, AccessToken: "tok"}
}

func TestFetcherAddsBearerAndJSONContentType(t *testing.T) {
	srv, seen := recordingServer(t, http.StatusOK, `{"ok":true}`)
	f := NewFetcher(srv.URL, NewSessionHolder(validSession()))

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, f.DoJSON(context.Background(), http.MethodPost, "/api/cart", map[string]int{"quantity": 1}, &out))
	assert.True(t, out.OK)

	req := <-seen
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/api/cart", req.path)
	assert.Equal(t, "Bearer tok", req.authorization)
	assert.Equal(t, "application/json", req.contentType)
	assert.JSONEq(t, `{"quantity":1}`, req.body)
}

func TestFetcherHeaderRules(t *testing.T) {
	srv, seen := recordingServer(t, http.StatusOK, `{}`)
	f := NewFetcher(srv.URL, NewSessionHolder(validSession()))

	h := Header{}
	h.Set("authorization", "Bearer autre")
	h.Set("content-type", "text/plain")
	h.Set("x-trace", "abc")

	resp, err := f.Do(context.Background(), http.MethodPut, "/upload", RequestOptions{Header: h, Body: []byte("brut")})
	require.NoError(t, err)
	resp.Body.Close()

	req := <-seen
	assert.Equal(t, "Bearer tok", req.authorization, "le token de session remplace celui de l'appelant")
	assert.Equal(t, "text/plain", req.contentType)
	assert.Equal(t, "abc", req.custom)
	assert.Equal(t, "brut", req.body)
}

func TestFetcherMultipartKeepsBoundary(t *testing.T) {
	srv, seen := recordingServer(t, http.StatusOK, `{}`)
	f := NewFetcher(srv.URL, NewSessionHolder(validSession()))

	form := NewMultipartBody()
	require.NoError(t, form.Field("name", "Robe"))
	require.NoError(t, form.File("image", "robe.png", strings.NewReader("png")))

	resp, err := f.Do(context.Background(), http.MethodPost, "/upload", RequestOptions{Body: form})
	require.NoError(t, err)
	resp.Body.Close()

	req := <-seen
	assert.True(t, strings.HasPrefix(req.contentType, "multipart/form-data; boundary="), req.contentType)
	assert.Contains(t, req.body, `name="name"`)
	assert.Contains(t, req.body, `filename="robe.png"`)
}

func TestFetcherWithoutSessionFailsFast(t *testing.T) {
	srv, seen := recordingServer(t, http.StatusOK, `{}`)

	var reasons []string
	f := NewFetcher(srv.URL, NewSessionHolder(nil), WithLoginRedirect(func(reason string) {
		reasons = append(reasons, reason)
	}))

	_, err := f.Do(context.Background(), http.MethodGet, "/api/cart", RequestOptions{})
	assert.ErrorIs(t, err, ErrAuthorizationRequired)

	// un token vide vaut une session absente
	f.sessions = NewSessionHolder(&Session{User: User{ID: "u1"}})
	err = f.DoJSON(context.Background(), http.MethodGet, "/api/cart", nil, nil)
	assert.ErrorIs(t, err, ErrAuthorizationRequired)

	assert.Equal(t, []string{RedirectMissingSession, RedirectMissingSession}, reasons)
	assert.Empty(t, seen, "aucune requête ne doit partir")
}

func TestFetcherExpiredSessionFailsFast(t *testing.T) {
	srv, seen := recordingServer(t, http.StatusOK, `{}`)

	var reasons []string
	expired := &Session{User: User{ID: "u1"}, AccessToken: "tok", Expires: time.Now().Add(-time.Minute)}
	f := NewFetcher(srv.URL, NewSessionHolder(expired), WithLoginRedirect(func(reason string) {
		reasons = append(reasons, reason)
	}))

	err := f.DoJSON(context.Background(), http.MethodGet, "/api/cart", nil, nil)

	assert.ErrorIs(t, err, ErrAuthorizationRequired)
	assert.Equal(t, []string{RedirectSessionExpired}, reasons)
	assert.Empty(t, seen)
}

func TestFetcherUnauthorizedRedirects(t *testing.T) {
	srv, seen := recordingServer(t, http.StatusUnauthorized, `{"error":"Token expiré"}`)

	var reasons []string
	f := NewFetcher(srv.URL, NewSessionHolder(validSession()), WithLoginRedirect(func(reason string) {
		reasons = append(reasons, reason)
	}))

	resp, err := f.Do(context.Background(), http.MethodGet, "/api/cart", RequestOptions{})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrAuthorizationRequired)
	assert.Equal(t, []string{RedirectSessionExpired}, reasons)
	assert.Len(t, seen, 1, "pas de nouvelle tentative")
}

func TestDecodeErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reply  string
		want   string
	}{
		{"champ error", http.StatusBadRequest, `{"error":"Stock insuffisant"}`, "Stock insuffisant"},
		{"champ message", http.StatusNotFound, `{"message":"Produit introuvable"}`, "Produit introuvable"},
		{"corps vide", http.StatusInternalServerError, ``, "la requête a échoué (Internal Server Error)"},
		{"corps non JSON", http.StatusBadGateway, `<html>`, "la requête a échoué (Bad Gateway)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := recordingServer(t, tt.status, tt.reply)
			f := NewFetcher(srv.URL, NewSessionHolder(validSession()))

			err := f.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil)

			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tt.status, reqErr.Status)
			assert.Equal(t, tt.want, reqErr.Message)
		})
	}
}

func TestPublicSkipsSession(t *testing.T) {
	srv, seen := recordingServer(t, http.StatusUnauthorized, `{"error":"Email ou mot de passe incorrect"}`)
	f := NewFetcher(srv.URL, NewSessionHolder(nil))

	err := f.Public(context.Background(), http.MethodPost, "/api/auth/login", map[string]string{"email": "a@b.fr"}, nil)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "Email ou mot de passe incorrect", reqErr.Message)
	assert.NotErrorIs(t, err, ErrAuthorizationRequired)
	assert.Empty(t, (<-seen).authorization)
}

func TestFetcherNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	f := NewFetcher(srv.URL, NewSessionHolder(validSession()))

	err := f.DoJSON(context.Background(), http.MethodGet, "/api/cart", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GET /api/cart")
}

func TestHeaderGetIsCaseInsensitive(t *testing.T) {
	h := Header{"content-type": "text/csv"}
	assert.Equal(t, "text/csv", h.Get("Content-Type"))
	assert.Empty(t, Header(nil).Get("Content-Type"))
}
