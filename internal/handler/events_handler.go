package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"gamestore/backend/internal/database"
	"gamestore/backend/internal/hub"
	"gamestore/backend/internal/logging"
	"gamestore/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// EventLikeCount is the hub event type carrying a game's like counter.
const EventLikeCount = "like_count"

// heartbeatInterval keeps idle event streams open through proxies.
var heartbeatInterval = 15 * time.Second

// LikeCountPayload is the payload of a like_count event.
type LikeCountPayload struct {
	GameID    uint  `json:"game_id"`
	LikeCount int64 `json:"like_count"`
}

// PublishGameLikeCount broadcasts a game's like counter to its event stream.
func PublishGameLikeCount(gameID uint, likeCount int64) {
	hub.GlobalHub.Broadcast(hub.GameTopic(gameID), hub.Event{
		Type:    EventLikeCount,
		Payload: LikeCountPayload{GameID: gameID, LikeCount: likeCount},
	})
}

// StreamGameEvents godoc
// @Summary      Stream live game events
// @Description  Server-sent events for one game. The stream opens with the current like_count and pushes a like_count event after every like toggle on the game.
// @Tags         games
// @Produce      text/event-stream
// @Param        id path int true "Game ID"
// @Success      200 {object} hub.Event
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id}/events [get]
func StreamGameEvents(c *gin.Context) {
	gameID, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var game models.Game
	if err := database.DB.WithContext(ctx).Select("id", "like_count").First(&game, gameID).Error; err != nil {
		respondError(c, notFoundOr(err, "Game", gameID))
		return
	}

	topic := hub.GameTopic(gameID)
	client := hub.GlobalHub.Subscribe(topic, 16)
	defer hub.GlobalHub.Unsubscribe(topic, client)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	snapshot, err := json.Marshal(hub.Event{
		Type:    EventLikeCount,
		Payload: LikeCountPayload{GameID: game.ID, LikeCount: game.LikeCount},
	})
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("encode event snapshot")
		return
	}
	if !writeEvent(c, EventLikeCount, snapshot) {
		return
	}

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case message, open := <-client:
			if !open || !writeEvent(c, EventLikeCount, message) {
				return
			}
		case <-ticker.C:
			if _, err := c.Writer.WriteString(": ping\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}

func writeEvent(c *gin.Context, name string, data []byte) bool {
	if _, err := c.Writer.WriteString("event: " + name + "\ndata: "); err != nil {
		return false
	}
	if _, err := c.Writer.Write(data); err != nil {
		return false
	}
	if _, err := c.Writer.WriteString("\n\n"); err != nil {
		return false
	}
	c.Writer.Flush()
	return true
}
