package auth

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	apierrors "github.com/pribylovaa/authgate/internal/errors"
	"github.com/pribylovaa/authgate/internal/models"
	"github.com/pribylovaa/authgate/internal/token"
)

func newCodec(t *testing.T, now func() time.Time) *token.Codec {
	t.Helper()
	c, err := token.New([]byte("extractor-secret"), time.Hour, token.WithClock(now))
	require.NoError(t, err)
	return c
}

// verifierFunc - адаптер функции к Verifier.
type verifierFunc func(string) (models.Claims, error)

func (f verifierFunc) Verify(raw string) (models.Claims, error) { return f(raw) }

func requireUnauthorized(t *testing.T, err error, wantMsg, wantReason string) {
	t.Helper()
	require.Error(t, err)

	status, resp := apierrors.ToHTTP(err)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "UNAUTHORIZED", resp.Error)
	require.Equal(t, wantMsg, resp.Message)
	require.Equal(t, wantReason, Reason(err))
}

func TestExtract_ValidToken(t *testing.T) {
	t.Parallel()

	c := newCodec(t, time.Now)
	uid := uuid.New()
	tok, _, err := c.Issue(uid.String())
	require.NoError(t, err)

	for _, header := range []string{"Bearer " + tok, "bearer " + tok, "  Bearer   " + tok + " "} {
		id, err := Extract(header, c)
		require.NoError(t, err)
		require.Equal(t, uid, id.UserID)
	}
}

func TestExtract_HeaderFailures(t *testing.T) {
	t.Parallel()

	c := newCodec(t, time.Now)

	tcs := []struct {
		name    string
		header  string
		wantMsg string
		reason  string
	}{
		{"missing", "", "missing authorization header", ReasonHeaderMissing},
		{"blank", "   ", "missing authorization header", ReasonHeaderMissing},
		{"wrong_scheme", "Token abc", "invalid authorization header", ReasonSchemeInvalid},
		{"basic", "Basic dXNlcjpwYXNz", "invalid authorization header", ReasonSchemeInvalid},
		{"scheme_only", "Bearer", "invalid authorization header", ReasonSchemeInvalid},
		{"scheme_and_space", "Bearer   ", "invalid authorization header", ReasonSchemeInvalid},
		{"two_tokens", "Bearer a b", "invalid authorization header", ReasonSchemeInvalid},
		{"no_space", "Bearerabc", "invalid authorization header", ReasonSchemeInvalid},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Extract(tc.header, c)
			requireUnauthorized(t, err, tc.wantMsg, tc.reason)
		})
	}
}

func TestExtract_TokenFailures_DoNotLeakCause(t *testing.T) {
	t.Parallel()

	issuedAt := time.Now().Add(-2 * time.Hour)
	stale := newCodec(t, func() time.Time { return issuedAt })
	expired, _, err := stale.Issue(uuid.NewString())
	require.NoError(t, err)

	other, err := token.New([]byte("other-secret"), time.Hour)
	require.NoError(t, err)
	forged, _, err := other.Issue(uuid.NewString())
	require.NoError(t, err)

	c := newCodec(t, time.Now)

	tcs := []struct {
		name   string
		raw    string
		reason string
	}{
		{"malformed", "not-a-jwt", ReasonTokenMalformed},
		{"wrong_secret", forged, ReasonTokenSignature},
		{"expired", expired, ReasonTokenExpired},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Extract("Bearer "+tc.raw, c)
			requireUnauthorized(t, err, "invalid token", tc.reason)
		})
	}
}

func TestExtract_InvalidSubject(t *testing.T) {
	t.Parallel()

	c := newCodec(t, time.Now)

	for _, sub := range []string{"u-1", uuid.Nil.String()} {
		tok, _, err := c.Issue(sub)
		require.NoError(t, err)

		_, err = Extract("Bearer "+tok, c)
		requireUnauthorized(t, err, "invalid identity in token", ReasonSubjectInvalid)
	}
}

func TestExtract_ForeignVerifierError_BecomesUnauthorized(t *testing.T) {
	t.Parallel()

	v := verifierFunc(func(string) (models.Claims, error) {
		return models.Claims{}, stderrors.New("boom")
	})

	_, err := Extract("Bearer abc", v)
	requireUnauthorized(t, err, "invalid token", ReasonUnknown)
}

func TestIdentityContext(t *testing.T) {
	t.Parallel()

	_, ok := IdentityFrom(context.Background())
	require.False(t, ok)

	want := models.Identity{UserID: uuid.New()}
	got, ok := IdentityFrom(WithIdentity(context.Background(), want))
	require.True(t, ok)
	require.Equal(t, want, got)
}
