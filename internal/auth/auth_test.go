package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/markbates/goth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() models.User {
	return models.User{ID: "3f0c1a52-0000-4000-8000-000000000001", Email: "a@b.c", Role: models.RoleBuyer}
}

func TestTokenMakerRoundTrip(t *testing.T) {
	maker, err := NewTokenMaker("un-secret-suffisant", time.Hour)
	require.NoError(t, err)

	token, claims, err := maker.Create(testUser())
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	got, err := maker.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, testUser().ID, got.UserID)
	assert.Equal(t, models.RoleBuyer, got.Role)
	assert.Equal(t, claims.ID, got.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), got.ExpiresAt.Time, 2*time.Second)
}

func TestTokenMakerExpired(t *testing.T) {
	maker, err := NewTokenMaker("un-secret-suffisant", time.Minute)
	require.NoError(t, err)
	token, _, err := maker.Create(testUser())
	require.NoError(t, err)

	maker.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = maker.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenMakerRejectsForeignTokens(t *testing.T) {
	maker, err := NewTokenMaker("un-secret-suffisant", time.Hour)
	require.NoError(t, err)
	other, err := NewTokenMaker("un-autre-secret", time.Hour)
	require.NoError(t, err)

	token, _, err := other.Create(testUser())
	require.NoError(t, err)
	_, err = maker.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// alg "none" refusé
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"id": "x", "role": "ADMIN"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = maker.Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = maker.Verify("pas-un-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenMakerRejectsUnknownRole(t *testing.T) {
	maker, err := NewTokenMaker("un-secret-suffisant", time.Hour)
	require.NoError(t, err)
	user := testUser()
	user.Role = "ROOT"

	token, _, err := maker.Create(user)
	require.NoError(t, err)
	_, err = maker.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenMakerShortSecret(t *testing.T) {
	_, err := NewTokenMaker("court", time.Hour)
	assert.Error(t, err)
}

func TestSessionStoreSaveTokenClear(t *testing.T) {
	store := NewSessionStore("session-secret-de-test", time.Hour, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	require.NoError(t, store.Save(rec, req, "tok", time.Now().Add(time.Hour)))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	next := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	next.AddCookie(cookies[0])
	token, ok := store.Token(next)
	assert.True(t, ok)
	assert.Equal(t, "tok", token)

	rec = httptest.NewRecorder()
	require.NoError(t, store.Clear(rec, next))
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.True(t, cleared[0].MaxAge < 0)
}

func TestSessionStoreExpiredToken(t *testing.T) {
	store := NewSessionStore("session-secret-de-test", time.Hour, false)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	require.NoError(t, store.Save(rec, req, "tok", time.Now().Add(-time.Second)))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(rec.Result().Cookies()[0])
	_, ok := store.Token(next)
	assert.False(t, ok)
}

func TestSetupOAuth(t *testing.T) {
	t.Cleanup(goth.ClearProviders)
	sessions := NewSessionStore("session-secret-de-test", time.Hour, false)

	names := SetupOAuth(OAuthConfig{BaseURL: "http://localhost:8080"}, sessions, zerolog.Nop())
	assert.Empty(t, names)

	names = SetupOAuth(OAuthConfig{
		BaseURL:        "http://localhost:8080",
		GoogleClientID: "id", GoogleClientSecret: "secret",
	}, sessions, zerolog.Nop())
	assert.Equal(t, []string{"google"}, names)

	provider, err := goth.GetProvider("google")
	require.NoError(t, err)
	assert.Equal(t, "google", provider.Name())
}
