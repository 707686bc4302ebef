package password

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apierrors "github.com/pribylovaa/authgate/internal/errors"
)

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := New(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestNew_RejectsCostOutOfRange(t *testing.T) {
	t.Parallel()

	_, err := New(bcrypt.MinCost - 1)
	require.ErrorIs(t, err, ErrInvalidCost)

	_, err = New(bcrypt.MaxCost + 1)
	require.ErrorIs(t, err, ErrInvalidCost)

	h, err := New(bcrypt.DefaultCost)
	require.NoError(t, err)
	require.Equal(t, bcrypt.DefaultCost, h.Cost())
}

func TestHashAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	h := newTestHasher(t)

	for _, secret := range []string{"Abcdef1!", "пароль-с-юникодом", " spaces inside "} {
		digest, err := h.Hash(secret)
		require.NoError(t, err)
		require.NotEqual(t, secret, digest)

		ok, err := h.Verify(secret, digest)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestVerify_WrongSecret_ReturnsFalse(t *testing.T) {
	t.Parallel()

	h := newTestHasher(t)

	digest, err := h.Hash("correct horse")
	require.NoError(t, err)

	ok, err := h.Verify("battery staple", digest)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHash_FreshSaltEachCall(t *testing.T) {
	t.Parallel()

	h := newTestHasher(t)

	d1, err := h.Hash("same-secret")
	require.NoError(t, err)
	d2, err := h.Hash("same-secret")
	require.NoError(t, err)

	require.NotEqual(t, d1, d2)

	for _, d := range []string{d1, d2} {
		ok, err := h.Verify("same-secret", d)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestVerify_MalformedDigest_IsInternal(t *testing.T) {
	t.Parallel()

	h := newTestHasher(t)

	for _, digest := range []string{"", "plain-text", "$2a$10$tooshort"} {
		ok, err := h.Verify("secret", digest)
		require.False(t, ok)
		require.Error(t, err)
		require.Equal(t, apierrors.KindInternal, apierrors.KindOf(err))
	}
}

func TestHash_TooLongSecret_IsInternal(t *testing.T) {
	t.Parallel()

	h := newTestHasher(t)

	_, err := h.Hash(string(make([]byte, 73)))
	require.Error(t, err)
	require.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
	require.Equal(t, apierrors.KindInternal, apierrors.KindOf(err))
}
