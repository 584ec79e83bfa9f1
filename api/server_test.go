package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/judgegodwins/chess-rooms/archive"
	"github.com/judgegodwins/chess-rooms/engine"
	"github.com/judgegodwins/chess-rooms/game"
	"github.com/judgegodwins/chess-rooms/mocks"
	"github.com/judgegodwins/chess-rooms/tokens"
	"github.com/judgegodwins/chess-rooms/util"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testSecret = "a-very-long-test-secret"

func TestMain(m *testing.M) {
	util.InitValidator()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, archiver archive.Archiver) *Server {
	t.Helper()

	config := &util.Config{
		JWTSecret:      testSecret,
		AllowedOrigins: "http://localhost:5173",
		TokenTTL:       time.Hour,
	}
	registry := game.NewRegistry(game.Settings{Engine: engine.NewChess()})

	return NewServer(config, registry, archiver, logs.GetLoggerFromLevel(slog.LevelDebug))
}

func newRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", "application/json")
	return request
}

func serve(s *Server, request *http.Request) *httptest.ResponseRecorder {
	response := httptest.NewRecorder()
	s.Handler().ServeHTTP(response, request)
	return response
}

func decodeData[D any](t *testing.T, response *httptest.ResponseRecorder) D {
	t.Helper()

	var body struct {
		Success bool `json:"success"`
		Data    D    `json:"data"`
	}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
	require.True(t, body.Success)
	return body.Data
}

func TestCreateToken(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("returns token (happy case)", func(t *testing.T) {
		req := require.New(t)
		response := serve(s, newRequest(t, http.MethodPost, "/auth/username", map[string]string{"username": "judge"}))
		req.Equal(http.StatusOK, response.Code)

		data := decodeData[map[string]string](t, response)
		req.Equal("judge", data["username"])

		payload, err := tokens.ParseJWTToken(data["token"], []byte(testSecret))
		req.NoError(err)
		req.Equal(data["id"], payload.ID)
	})

	t.Run("missing username", func(t *testing.T) {
		response := serve(s, newRequest(t, http.MethodPost, "/auth/username", map[string]string{}))
		require.Equal(t, http.StatusUnprocessableEntity, response.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/auth/username", bytes.NewBufferString("{"))
		response := serve(s, request)
		require.Equal(t, http.StatusBadRequest, response.Code)
	})
}

func TestAuthMiddlewareAndTokenData(t *testing.T) {
	s := newTestServer(t, nil)
	secret := []byte(testSecret)

	authed := func(t *testing.T, header string) *httptest.ResponseRecorder {
		request := newRequest(t, http.MethodGet, "/auth/me", nil)
		if header != "" {
			request.Header.Set("Authorization", header)
		}
		return serve(s, request)
	}

	t.Run("allow valid token entry", func(t *testing.T) {
		token, err := tokens.NewJWTToken(tokens.NewPayload("judge"), secret, time.Minute)
		require.NoError(t, err)

		response := authed(t, fmt.Sprintf("Bearer %v", token))
		require.Equal(t, http.StatusOK, response.Code)
		require.Equal(t, "judge", decodeData[tokens.Payload](t, response).Username)
	})

	t.Run("disallow invalid token entry", func(t *testing.T) {
		token, err := tokens.NewJWTToken(tokens.NewPayload("judge"), secret, time.Minute)
		require.NoError(t, err)

		response := authed(t, fmt.Sprintf("Bearer %v", token+"hhh"))
		require.Equal(t, http.StatusUnauthorized, response.Code)
	})

	t.Run("return unauthorized expired token entry", func(t *testing.T) {
		token, err := tokens.NewJWTToken(tokens.NewPayload("judge"), secret, -time.Minute)
		require.NoError(t, err)

		response := authed(t, fmt.Sprintf("Bearer %v", token))
		require.Equal(t, http.StatusUnauthorized, response.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, authed(t, "").Code)
		require.Equal(t, http.StatusUnauthorized, authed(t, "Bearer").Code)
	})
}

func TestCheckRoom(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t, nil)

	response := serve(s, newRequest(t, http.MethodGet, "/rooms/zzzzz", nil))
	req.Equal(http.StatusNotFound, response.Code)

	room, _, err := s.registry.Create("conn-a", "alice", game.White)
	req.NoError(err)

	response = serve(s, newRequest(t, http.MethodGet, "/rooms/"+room.ID, nil))
	req.Equal(http.StatusOK, response.Code)

	status := decodeData[map[string]any](t, response)
	req.Equal(room.ID, status["id"])
	req.Equal("waiting_for_opponent", status["state"])
	req.Equal(false, status["full"])
	req.Equal(false, status["started"])

	_, _, err = room.Join("conn-b", "bob", game.NoColor)
	req.NoError(err)

	response = serve(s, newRequest(t, http.MethodGet, "/rooms/"+room.ID, nil))
	status = decodeData[map[string]any](t, response)
	req.Equal(true, status["full"])
	req.Equal(true, status["started"])
}

func TestGetGame(t *testing.T) {
	t.Run("archive disabled", func(t *testing.T) {
		s := newTestServer(t, nil)
		response := serve(s, newRequest(t, http.MethodGet, "/games/abcde", nil))
		require.Equal(t, http.StatusNotFound, response.Code)
	})

	t.Run("archived game", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		store := mocks.NewMockArchiver(ctrl)
		record := archive.Record{
			RoomID: "abcde",
			White:  "alice",
			Black:  "bob",
			Winner: game.Black,
			Reason: game.ReasonCheckmate,
			Moves:  []string{"f3", "e5", "g4", "Qh4#"},
		}
		store.EXPECT().Load(gomock.Any(), "abcde").Return(record, nil)

		s := newTestServer(t, store)
		response := serve(s, newRequest(t, http.MethodGet, "/games/abcde", nil))
		req.Equal(http.StatusOK, response.Code)

		loaded := decodeData[archive.Record](t, response)
		req.Equal(record.Moves, loaded.Moves)
		req.Equal(game.ReasonCheckmate, loaded.Reason)
	})

	t.Run("unknown and failing lookups", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockArchiver(ctrl)
		store.EXPECT().Load(gomock.Any(), "nope").Return(archive.Record{}, archive.ErrNotFound)
		store.EXPECT().Load(gomock.Any(), "boom").Return(archive.Record{}, errors.New("connection refused"))

		s := newTestServer(t, store)
		require.Equal(t, http.StatusNotFound, serve(s, newRequest(t, http.MethodGet, "/games/nope", nil)).Code)
		require.Equal(t, http.StatusInternalServerError, serve(s, newRequest(t, http.MethodGet, "/games/boom", nil)).Code)
	})
}

func TestHealth(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t, nil)
	_, _, err := s.registry.Create("conn-a", "alice", game.White)
	req.NoError(err)

	response := serve(s, newRequest(t, http.MethodGet, "/health", nil))
	req.Equal(http.StatusOK, response.Code)

	var body map[string]any
	req.NoError(json.Unmarshal(response.Body.Bytes(), &body))
	req.Equal("ok", body["status"])
	req.Equal(float64(1), body["rooms"])
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("allowed origin", func(t *testing.T) {
		request := newRequest(t, http.MethodOptions, "/auth/username", nil)
		request.Header.Set("Origin", "http://localhost:5173")
		request.Header.Set("Access-Control-Request-Method", http.MethodPost)

		response := serve(s, request)
		require.Equal(t, "http://localhost:5173", response.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("foreign origin", func(t *testing.T) {
		request := newRequest(t, http.MethodGet, "/health", nil)
		request.Header.Set("Origin", "http://evil.test")

		response := serve(s, request)
		require.Empty(t, response.Header().Get("Access-Control-Allow-Origin"))
	})
}
