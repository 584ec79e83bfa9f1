package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var secret = []byte("a-very-long-test-secret")

func TestJWTToken(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		req := require.New(t)
		payload := NewPayload("judge")

		token, err := NewJWTToken(payload, secret, time.Minute)
		req.NoError(err)

		parsed, err := ParseJWTToken(token, secret)
		req.NoError(err)
		req.Equal(payload, *parsed)
	})

	t.Run("tampered token", func(t *testing.T) {
		token, err := NewJWTToken(NewPayload("judge"), secret, time.Minute)
		require.NoError(t, err)

		_, err = ParseJWTToken(token+"hhh", secret)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := NewJWTToken(NewPayload("judge"), secret, -time.Minute)
		require.NoError(t, err)

		_, err = ParseJWTToken(token, secret)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewJWTToken(NewPayload("judge"), secret, time.Minute)
		require.NoError(t, err)

		_, err = ParseJWTToken(token, []byte("another-secret-entirely"))
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing username claim", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"id":  "abc",
			"exp": time.Now().Add(time.Minute).Unix(),
		}).SignedString(secret)
		require.NoError(t, err)

		_, err = ParseJWTToken(token, secret)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}
