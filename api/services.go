package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/judgegodwins/chess-rooms/archive"
	"github.com/judgegodwins/chess-rooms/game"
	"github.com/judgegodwins/chess-rooms/http_utils"
	"github.com/judgegodwins/chess-rooms/tokens"
	"github.com/judgegodwins/chess-rooms/util"
	"github.com/samber/lo"
)

type usernameRequest struct {
	Username string `json:"username" validate:"required,max=32"`
}

// Issues a display-name token for the username in the request body.
func (s *Server) TokenGenerator(c *gin.Context) {
	var data usernameRequest

	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, http_utils.NewErrorResponse(err.Error()))
		return
	}

	if resp, ok := http_utils.ValidateStruct(util.Validate, data); !ok {
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}

	payload := tokens.NewPayload(data.Username)

	token, err := tokens.NewJWTToken(payload, []byte(s.config.JWTSecret), s.config.TokenTTL)
	if err != nil {
		s.log.Error("error signing token", "error", err)
		c.JSON(http.StatusInternalServerError, http_utils.NewErrorResponse(http_utils.ErrorMessage500))
		return
	}

	c.JSON(http.StatusOK, http_utils.NewDataResponse("Auth data", gin.H{
		"id":       payload.ID,
		"username": payload.Username,
		"token":    token,
	}))
}

func (s *Server) GetTokenData(c *gin.Context) {
	payload, ok := GetPayload(c)
	if !ok {
		s.log.Error("auth payload missing from request context")
		c.JSON(http.StatusInternalServerError, http_utils.NewErrorResponse(http_utils.ErrorMessage500))
		return
	}

	c.JSON(http.StatusOK, http_utils.NewDataResponse("success", payload))
}

type roomURI struct {
	ID string `uri:"id" binding:"required"`
}

type roomStatus struct {
	ID      string     `json:"id"`
	State   game.State `json:"state"`
	Full    bool       `json:"full"`
	Started bool       `json:"started"`
}

// CheckRoom lets a lobby decide whether a room id is joinable before opening a socket.
func (s *Server) CheckRoom(c *gin.Context) {
	var data roomURI

	if err := c.ShouldBindUri(&data); err != nil {
		c.JSON(http.StatusUnprocessableEntity, http_utils.NewErrorResponse(err.Error()))
		return
	}

	room, err := s.registry.Lookup(data.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, http_utils.NewErrorResponse("room not found"))
		return
	}

	snap := room.Snapshot()
	c.JSON(http.StatusOK, http_utils.NewDataResponse("room data", roomStatus{
		ID:    snap.RoomID,
		State: snap.State,
		Full: lo.EveryBy(snap.Seats, func(seat game.SeatView) bool {
			return seat.Occupied
		}),
		Started: snap.Started,
	}))
}

func (s *Server) GetGame(c *gin.Context) {
	var data roomURI

	if err := c.ShouldBindUri(&data); err != nil {
		c.JSON(http.StatusUnprocessableEntity, http_utils.NewErrorResponse(err.Error()))
		return
	}

	if s.archive == nil {
		c.JSON(http.StatusNotFound, http_utils.NewErrorResponse("game archive disabled"))
		return
	}

	record, err := s.archive.Load(c.Request.Context(), data.ID)
	if errors.Is(err, archive.ErrNotFound) {
		c.JSON(http.StatusNotFound, http_utils.NewErrorResponse("game not found"))
		return
	}
	if err != nil {
		s.log.Error("error loading archived game", "room_id", data.ID, "error", err)
		c.JSON(http.StatusInternalServerError, http_utils.NewErrorResponse(http_utils.ErrorMessage500))
		return
	}

	c.JSON(http.StatusOK, http_utils.NewDataResponse("game record", record))
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"rooms":       s.registry.Len(),
		"connections": s.wsManager.ClientCount(),
	})
}
