package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"number_rush/internal/besttime"
	"number_rush/internal/game"
	"number_rush/internal/repository"
	"number_rush/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsPeer struct {
	conn *websocket.Conn
	in   chan []byte
}

func startServer(t *testing.T, kv besttime.KV) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(Deps{
		Factory: game.NewFactory(game.BoardDistractors),
		Results: service.NewResultService(repository.NewMemoryResultRepository()),
		BestKV:  func(string) besttime.KV { return kv },
	})
	r := gin.New()
	r.GET("/ws", HandleWS(hub, ""))
	ts := httptest.NewServer(r)
	t.Cleanup(func() {
		hub.Shutdown()
		ts.Close()
	})
	return hub, strings.Replace(ts.URL, "http", "ws", 1) + "/ws?device=test-device"
}

func dial(t *testing.T, url string) *wsPeer {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	p := &wsPeer{conn: conn, in: make(chan []byte, 1024)}
	// single reader per connection
	go func() {
		defer close(p.in)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			p.in <- msg
		}
	}()
	return p
}

func (p *wsPeer) write(t *testing.T, typ string, payload any) {
	t.Helper()
	data, err := json.Marshal(Message{Type: typ, Payload: payload})
	require.NoError(t, err)
	require.NoError(t, p.conn.WriteMessage(websocket.TextMessage, data))
}

// waitFor returns the raw frame of the first message of type typ.
func (p *wsPeer) waitFor(t *testing.T, typ string, cond func(raw []byte) bool) []byte {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case raw, ok := <-p.in:
			if !ok {
				t.Fatalf("connection closed while waiting for %s", typ)
			}
			var m inbound
			if json.Unmarshal(raw, &m) != nil {
				continue
			}
			if m.Type == typ && (cond == nil || cond(raw)) {
				return raw
			}
		case <-deadline:
			t.Fatalf("timeout waiting for %s", typ)
		}
	}
}

func snapshotOf(t *testing.T, raw []byte) game.Snapshot {
	t.Helper()
	var m struct {
		Payload game.Snapshot `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(raw, &m))
	return m.Payload
}

func TestClient_PlaysAndSubmits(t *testing.T) {
	kv := besttime.NewMemoryKV()
	hub, url := startServer(t, kv)
	p := dial(t, url)

	p.waitFor(t, MsgReady, nil)
	idle := snapshotOf(t, p.waitFor(t, MsgState, nil))
	assert.Equal(t, game.PhaseIdle, idle.Phase)
	assert.Equal(t, 1, hub.Count())

	p.write(t, MsgStart, StartPayload{Difficulty: "easy", Rule: "sequence"})
	p.waitFor(t, MsgState, func(raw []byte) bool { return snapshotOf(t, raw).Phase == game.PhasePlaying })

	for n := 1; n <= 9; n++ {
		p.write(t, MsgClick, ClickPayload{Value: n})
	}

	var done struct {
		Payload game.Completion `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(p.waitFor(t, MsgCompleted, nil), &done))
	assert.True(t, done.Payload.NewBest)
	assert.Equal(t, "easy", string(done.Payload.Difficulty))

	stored, err := kv.Get(context.Background(), besttime.Key("easy", "sequence"))
	require.NoError(t, err)
	assert.NotEmpty(t, stored)

	p.write(t, MsgSubmit, SubmitPayload{PlayerName: "Ann"})
	var sub struct {
		Payload SubmittedPayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(p.waitFor(t, MsgSubmitted, nil), &sub))
	assert.NotEmpty(t, sub.Payload.ID)
	assert.Equal(t, 100.0, sub.Payload.Percentage)

	// a finished game is submitted once
	p.write(t, MsgSubmit, SubmitPayload{PlayerName: "Ann"})
	p.waitFor(t, MsgError, func(raw []byte) bool { return strings.Contains(string(raw), errNothingToSubmit.Error()) })
}

func TestClient_WrongClickAndConfigWhilePlaying(t *testing.T) {
	_, url := startServer(t, besttime.NewMemoryKV())
	p := dial(t, url)
	p.waitFor(t, MsgReady, nil)

	p.write(t, MsgStart, StartPayload{Difficulty: "easy", Rule: "odd"})
	p.waitFor(t, MsgState, func(raw []byte) bool { return snapshotOf(t, raw).Phase == game.PhasePlaying })

	p.write(t, MsgClick, ClickPayload{Value: 2})
	wrong := snapshotOf(t, p.waitFor(t, MsgState, func(raw []byte) bool { return snapshotOf(t, raw).LastWrongClick != nil }))
	assert.Equal(t, 2, *wrong.LastWrongClick)
	assert.Equal(t, 0, wrong.NextExpectedIndex)
	p.waitFor(t, MsgState, func(raw []byte) bool { return snapshotOf(t, raw).LastWrongClick == nil })

	p.write(t, MsgConfig, ConfigPayload{Difficulty: "hard"})
	p.waitFor(t, MsgError, func(raw []byte) bool { return strings.Contains(string(raw), game.ErrSessionActive.Error()) })
}

func TestClient_PingAndUnknownType(t *testing.T) {
	_, url := startServer(t, besttime.NewMemoryKV())
	p := dial(t, url)
	p.waitFor(t, MsgReady, nil)

	p.write(t, MsgPing, nil)
	p.waitFor(t, MsgPong, nil)

	p.write(t, "jump", nil)
	p.waitFor(t, MsgError, nil)
}

func TestHub_ShutdownClosesSessions(t *testing.T) {
	hub, url := startServer(t, besttime.NewMemoryKV())
	p := dial(t, url)
	p.waitFor(t, MsgReady, nil)

	hub.Shutdown()

	deadline := time.After(3 * time.Second)
	for {
		select {
		case _, ok := <-p.in:
			if !ok {
				require.Eventually(t, func() bool { return hub.Count() == 0 }, 3*time.Second, 10*time.Millisecond)
				return
			}
		case <-deadline:
			t.Fatalf("connection not closed by shutdown")
		}
	}
}
