package ws

import "encoding/json"

// Message is the envelope for every frame in both directions.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// inbound is a Message before its payload type is known.
type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// client → server
type StartPayload struct {
	Difficulty string `json:"difficulty,omitempty"`
	Rule       string `json:"rule,omitempty"`
}

type ClickPayload struct {
	Value int `json:"value"`
}

type ConfigPayload struct {
	Difficulty string `json:"difficulty,omitempty"`
	Rule       string `json:"rule,omitempty"`
}

type SubmitPayload struct {
	PlayerName string `json:"playerName"`
}

// server → client
type ReadyPayload struct {
	ConnID string `json:"connId"`
}

type SubmittedPayload struct {
	ID         string  `json:"id"`
	Percentage float64 `json:"percentage"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
