package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"number_rush/internal/besttime"
	"number_rush/internal/domain"
	"number_rush/internal/game"
	"number_rush/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

var errNothingToSubmit = errors.New("no finished game to submit")

// Client is one websocket connection playing one server-side session.
type Client struct {
	ID       string
	DeviceID string
	Conn     *websocket.Conn
	Send     chan []byte

	hub    *Hub
	ctx    context.Context
	runner *game.Runner

	mu         sync.Mutex
	completion *game.Completion
}

func NewClient(deviceID string, conn *websocket.Conn, hub *Hub) *Client {
	if deviceID == "" {
		deviceID = uuid.NewString()
	}
	return &Client{
		ID:       uuid.NewString(),
		DeviceID: deviceID,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		hub:      hub,
	}
}

// Run plays the session until the peer disconnects or the hub shuts down.
func (c *Client) Run() {
	ctx, cancel := context.WithCancel(c.hub.ctx)
	defer cancel()
	c.ctx = logger.NewContext(ctx, "conn", c.ID, "device", c.DeviceID)
	log := logger.WithContext(c.ctx)

	best := besttime.NewStore(c.hub.deps.BestKV(c.DeviceID))
	session, err := c.hub.deps.Factory.NewSession(domain.DifficultyEasy, domain.RuleSequence, best)
	if err != nil {
		log.Error("ws session create failed", "error", err)
		_ = c.Conn.Close()
		return
	}
	c.runner = game.NewRunner(session, game.RunnerConfig{
		OnSnapshot:  func(s game.Snapshot) { c.send(Message{Type: MsgState, Payload: s}) },
		OnCompleted: c.onCompleted,
		OnError:     func(err error) { c.sendError(err.Error()) },
	})

	c.hub.register(c)
	defer c.hub.unregister(c)

	go c.writePump()
	c.send(Message{Type: MsgReady, Payload: ReadyPayload{ConnID: c.ID}})

	go func() {
		_ = c.runner.Run(c.ctx)
	}()

	c.readPump()
	cancel()
	<-c.runner.Done()
	log.Info("ws session closed")
}

func (c *Client) onCompleted(comp game.Completion) {
	c.mu.Lock()
	c.completion = &comp
	c.mu.Unlock()

	GamesCompleted.WithLabelValues(string(comp.Difficulty), string(comp.Rule)).Inc()
	logger.WithContext(c.ctx).Info("ws game completed", "difficulty", comp.Difficulty, "rule", comp.Rule, "time", comp.CompletionTime, "new_best", comp.NewBest)
	c.send(Message{Type: MsgCompleted, Payload: comp})
}

// read
func (c *Client) readPump() {
	defer c.Conn.Close()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WithContext(c.ctx).Warn("ws read error", "error", err)
			}
			return
		}
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		c.handleMessage(raw)
	}
}

func (c *Client) handleMessage(raw []byte) {
	var msg inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("invalid message")
		return
	}

	switch msg.Type {
	case MsgStart:
		var p StartPayload
		if !c.decode(msg.Payload, &p) {
			return
		}
		c.post(c.runner.StartWith(domain.Difficulty(p.Difficulty), domain.Rule(p.Rule)))

	case MsgClick:
		var p ClickPayload
		if !c.decode(msg.Payload, &p) {
			return
		}
		c.post(c.runner.Click(p.Value))

	case MsgConfig:
		var p ConfigPayload
		if !c.decode(msg.Payload, &p) {
			return
		}
		c.post(c.runner.Configure(domain.Difficulty(p.Difficulty), domain.Rule(p.Rule)))

	case MsgSubmit:
		var p SubmitPayload
		if !c.decode(msg.Payload, &p) {
			return
		}
		c.submit(p.PlayerName)

	case MsgPing:
		c.send(Message{Type: MsgPong})

	default:
		c.sendError("unknown message type: " + msg.Type)
	}
}

func (c *Client) decode(raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		return true
	}
	if err := json.Unmarshal(raw, v); err != nil {
		c.sendError("invalid payload")
		return false
	}
	return true
}

func (c *Client) post(err error) {
	if err != nil {
		c.sendError(err.Error())
	}
}

// submit stores the last finished game once and reports its percentile.
func (c *Client) submit(playerName string) {
	c.mu.Lock()
	comp := c.completion
	c.completion = nil
	c.mu.Unlock()

	if comp == nil {
		c.sendError(errNothingToSubmit.Error())
		return
	}
	if c.hub.deps.Results == nil {
		c.sendError("result storage is not configured")
		return
	}

	sub := domain.SubmissionFromResult(comp.Result(playerName))
	ranked, err := c.hub.deps.Results.SubmitAndRank(c.ctx, &sub)
	if err != nil {
		c.sendError("failed to save result")
		return
	}
	c.send(Message{Type: MsgSubmitted, Payload: SubmittedPayload{
		ID:         ranked.Result.ID,
		Percentage: ranked.Percentage,
	}})
}

// write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.WithContext(c.ctx).Debug("ws write error", "error", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Client) send(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.WithContext(c.ctx).Error("ws marshal error", "type", msg.Type, "error", err)
		return
	}

	select {
	case c.Send <- data:
	case <-c.ctx.Done():
	case <-time.After(writeWait):
		logger.WithContext(c.ctx).Warn("ws send timeout", "type", msg.Type)
	}
}

func (c *Client) sendError(message string) {
	c.send(Message{Type: MsgError, Payload: ErrorPayload{Message: message}})
}
