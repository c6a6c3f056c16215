package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_GenerateAndVerify(t *testing.T) {
	t.Parallel()

	m := NewJWTManager("super-secret", "todo-service", time.Hour)
	tok, exp, err := m.Generate("alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "todo-service", claims.Issuer)
}

func TestJWTManager_ValidUntilOneHour(t *testing.T) {
	t.Parallel()

	m := NewJWTManager("secret", "todo-service", time.Hour)
	issued := time.Now()
	tok, _, err := m.Generate("alice")
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(59 * time.Minute) }
	_, err = m.Verify(tok)
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(61 * time.Minute) }
	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTManager_Expired(t *testing.T) {
	t.Parallel()

	m := NewJWTManager("secret", "todo-service", -time.Second)
	tok, _, err := m.Generate("bob")
	require.NoError(t, err)

	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, _, err := NewJWTManager("right-secret", "todo-service", time.Hour).Generate("carol")
	require.NoError(t, err)

	_, err = NewJWTManager("wrong-secret", "todo-service", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_Malformed(t *testing.T) {
	t.Parallel()

	m := NewJWTManager("secret", "todo-service", time.Hour)
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		_, err := m.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}

func TestJWTManager_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := &Claims{
		Username: "mallory",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTManager("secret", "todo-service", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = NewJWTManager("secret", "todo-service", time.Hour).Verify(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRandomSecret(t *testing.T) {
	t.Parallel()

	a, err := RandomSecret()
	require.NoError(t, err)
	b, err := RandomSecret()
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
