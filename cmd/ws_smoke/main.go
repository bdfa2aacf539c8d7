package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"number_rush/internal/domain"
	"number_rush/internal/game"
	"number_rush/internal/logger"
	"number_rush/internal/ws"

	"github.com/gorilla/websocket"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"), false)

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	difficulty := flag.String("difficulty", "easy", "difficulty to play")
	rule := flag.String("rule", "odd", "rule to play")
	name := flag.String("name", "smoke", "player name to submit")
	flag.Parse()

	d, err := domain.ParseDifficulty(*difficulty)
	if err != nil {
		logger.Fatal("bad difficulty", "error", err)
	}
	r, err := domain.ParseRule(*rule)
	if err != nil {
		logger.Fatal("bad rule", "error", err)
	}
	cfg, _ := d.Config()

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	url := fmt.Sprintf("ws://127.0.0.1:%s/ws?device=ws-smoke", port)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		logger.Fatal("dial", "url", url, "error", err)
	}
	defer conn.Close()

	// single reader; frames are forwarded as decoded envelopes
	type frame struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	in := make(chan frame, 256)
	go func() {
		defer close(in)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var f frame
			if json.Unmarshal(msg, &f) == nil {
				in <- f
			}
		}
	}()

	waitFor := func(typ string) json.RawMessage {
		deadline := time.After(5 * time.Second)
		for {
			select {
			case f, ok := <-in:
				if !ok {
					logger.Fatal("connection closed", "waiting_for", typ)
				}
				if f.Type == ws.MsgError {
					logger.Warn("server error", "payload", string(f.Payload))
				}
				if f.Type == typ {
					return f.Payload
				}
			case <-deadline:
				logger.Fatal("timeout", "waiting_for", typ)
			}
		}
	}

	send := func(typ string, payload any) {
		data, _ := json.Marshal(ws.Message{Type: typ, Payload: payload})
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.Fatal("write", "type", typ, "error", err)
		}
	}

	waitFor(ws.MsgReady)
	send(ws.MsgStart, ws.StartPayload{Difficulty: string(d), Rule: string(r)})

	start := time.Now()
	for _, n := range game.TargetSequence(cfg.Max, r) {
		send(ws.MsgClick, ws.ClickPayload{Value: n})
	}

	var done game.Completion
	_ = json.Unmarshal(waitFor(ws.MsgCompleted), &done)
	logger.Info("game completed", "server_time", done.CompletionTime, "wall", time.Since(start).Round(time.Millisecond), "new_best", done.NewBest)

	send(ws.MsgSubmit, ws.SubmitPayload{PlayerName: *name})
	var sub ws.SubmittedPayload
	_ = json.Unmarshal(waitFor(ws.MsgSubmitted), &sub)
	logger.Info("result submitted", "id", sub.ID, "percentage", sub.Percentage)

	logger.Info("smoke test finished")
}
