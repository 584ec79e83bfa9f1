package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/judgegodwins/chess-rooms/http_utils"
	"github.com/judgegodwins/chess-rooms/tokens"
)

type contextkey string

const authContextKey contextkey = "auth_payload"

func (s *Server) AuthMiddleware(c *gin.Context) {
	header := c.Request.Header.Get("authorization")

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, http_utils.NewErrorResponse("unauthorized"))
		return
	}

	payload, err := tokens.ParseJWTToken(token, []byte(s.config.JWTSecret))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, http_utils.NewErrorResponse("invalid bearer token"))
		return
	}

	c.Set(string(authContextKey), payload)

	c.Next()
}

func GetPayload(ctx *gin.Context) (*tokens.Payload, bool) {
	v, ok := ctx.Get(string(authContextKey))
	if !ok {
		return nil, ok
	}

	payload, ok := v.(*tokens.Payload)

	return payload, ok
}
