package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gamestore/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type streamedEvent struct {
	Type    string           `json:"type"`
	Payload LikeCountPayload `json:"payload"`
}

// nextEvent reads one "event:/data:" frame, skipping heartbeats.
func nextEvent(t *testing.T, reader *bufio.Reader) (string, streamedEvent) {
	t.Helper()
	var name string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			var ev streamedEvent
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
			return name, ev
		}
	}
}

func TestStreamGameEvents(t *testing.T) {
	env := newTestEnv(t, nil)
	dev, _ := env.user("dev", models.RoleDeveloper)
	_, token := env.user("alice", "")
	game := env.game(dev, "Star Forge", 1999, nil)

	server := httptest.NewServer(env.router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+path("/games/%d/events", game.ID), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	reader := bufio.NewReader(resp.Body)

	name, ev := nextEvent(t, reader)
	assert.Equal(t, EventLikeCount, name)
	assert.Equal(t, game.ID, ev.Payload.GameID)
	assert.Equal(t, int64(0), ev.Payload.LikeCount)

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, path("/games/%d/like", game.ID), token, nil).Code)
	_, ev = nextEvent(t, reader)
	assert.Equal(t, EventLikeCount, ev.Type)
	assert.Equal(t, int64(1), ev.Payload.LikeCount)

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, path("/games/%d/like", game.ID), token, nil).Code)
	_, ev = nextEvent(t, reader)
	assert.Equal(t, int64(0), ev.Payload.LikeCount)
}

func TestStreamGameEventsUnknownGame(t *testing.T) {
	env := newTestEnv(t, nil)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, path("/games/999/events"), "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, path("/games/abc/events"), "", nil).Code)
}
