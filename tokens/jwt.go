package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Payload is the display identity a token carries. It grants no permissions.
type Payload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func NewPayload(username string) Payload {
	return Payload{ID: uuid.NewString(), Username: username}
}

func NewJWTToken(payload Payload, secret []byte, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"id":       payload.ID,
		"username": payload.Username,
		"exp":      time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(secret)
}

func ParseJWTToken(tokenString string, secret []byte) (*Payload, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	username, ok1 := claims["username"].(string)
	id, ok2 := claims["id"].(string)

	if !ok1 || !ok2 || username == "" || id == "" {
		return nil, ErrInvalidToken
	}

	return &Payload{ID: id, Username: username}, nil
}
