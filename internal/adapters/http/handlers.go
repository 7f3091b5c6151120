package http

import (
	"net/http"

	"github.com/dkeye/Chat/internal/app/orch"
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/dkeye/Chat/pkg/protocol"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type handlers struct {
	orch      *orch.Orchestrator
	suggested []string
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Room     string `json:"room"`
}

// login remembers the display name and preferred room in the cookie session.
// Nothing is joined here; the WebSocket join does that.
func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name, err := domain.NormalizeUsername(req.Username)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var room domain.RoomName
	if req.Room != "" {
		if room, err = domain.ParseRoomName(req.Room); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	s := sessions.Default(c)
	s.Set(sessionUsernameKey, name)
	s.Set(sessionRoomKey, string(room))
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session save failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": name, "room": room})
}

func (h *handlers) session(c *gin.Context) {
	p := prefillFrom(sessions.Default(c))
	c.JSON(http.StatusOK, gin.H{
		"client_token": c.GetString("client_token"),
		"username":     p.Username,
		"room":         p.Room,
	})
}

func (h *handlers) rooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"rooms":     h.orch.Rooms.List(),
		"suggested": h.suggested,
	})
}

func (h *handlers) members(c *gin.Context) {
	room, ok := h.lookupRoom(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room.Room().Name, "members": room.MembersSnapshot()})
}

func (h *handlers) history(c *gin.Context) {
	room, ok := h.lookupRoom(c)
	if !ok {
		return
	}
	msgs := room.History()
	entries := make([]protocol.ChatEntry, 0, len(msgs))
	for _, m := range msgs {
		entries = append(entries, protocol.ChatEntry{Username: m.Username, Msg: m.Text, TS: protocol.Millis(m.Timestamp)})
	}
	c.JSON(http.StatusOK, gin.H{"room": room.Room().Name, "history": entries})
}

func (h *handlers) lookupRoom(c *gin.Context) (core.RoomService, bool) {
	name, err := domain.ParseRoomName(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	room, ok := h.orch.Rooms.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return nil, false
	}
	return room, true
}
