package ws

import (
	"encoding/json"
	"errors"
	"fmt"

	"tap_duel/internal/match"
	"tap_duel/internal/render"
)

const (
	// client to server
	MsgInput      = "input"
	MsgControl    = "control"
	MsgAudioEnded = "audio_ended"
	MsgResize     = "resize"
	MsgConfigure  = "configure"

	// server to client
	MsgReady   = "ready"
	MsgAssets  = "assets"
	MsgState   = "state"
	MsgOverlay = "overlay"
	MsgFrame   = "frame"
	MsgAudio   = "audio"
	MsgResult  = "result"
	MsgReload  = "reload"
	MsgError   = "error"
)

// envelope is decoded first to pick the payload type.
type envelope struct {
	Type string `json:"type"`
}

// client to server

type InputMessage struct {
	Kind string  `json:"kind"` // keydown | keyup | pointer | touch
	Code string  `json:"code,omitempty"`
	X    float64 `json:"x,omitempty"`
	Y    float64 `json:"y,omitempty"`
}

type ControlMessage struct {
	ID string `json:"id"`
}

type AudioEndedMessage struct {
	ID uint64 `json:"id"`
}

type ResizeMessage struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	FontSize float64 `json:"fontSize,omitempty"`
}

type ConfigureMessage struct {
	Config json.RawMessage `json:"config"`
}

var inputKinds = map[string]match.InputKind{
	"keydown": match.InputKeyDown,
	"keyup":   match.InputKeyUp,
	"pointer": match.InputPointer,
	"touch":   match.InputTouch,
}

// Event converts the message into an engine input event.
func (m InputMessage) Event() (match.Event, bool) {
	kind, ok := inputKinds[m.Kind]
	if !ok {
		return match.Event{}, false
	}
	return match.Event{Kind: kind, Code: m.Code, Point: match.Point{X: m.X, Y: m.Y}}, true
}

// server to client

type ReadyMessage struct {
	Type      string  `json:"type"`
	Session   string  `json:"session"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	RefreshHz int     `json:"refreshHz"`
}

// AssetsMessage maps resource names to URLs the browser fetches.
type AssetsMessage struct {
	Type   string            `json:"type"`
	Images map[string]string `json:"images"`
	Sounds map[string]string `json:"sounds"`
}

type StateMessage struct {
	Type     string `json:"type"`
	State    string `json:"state"`
	Previous string `json:"previous"`
	Paused   bool   `json:"paused"`
	Muted    bool   `json:"muted"`
}

type OverlayMessage struct {
	Type         string              `json:"type"`
	Op           string              `json:"op"`
	Names        []string            `json:"names,omitempty"`
	Text         string              `json:"text,omitempty"`
	Player       int                 `json:"player,omitempty"`
	Name         string              `json:"name,omitempty"`
	Score        *int                `json:"score,omitempty"`
	On           *bool               `json:"on,omitempty"`
	Percent      *int                `json:"percent,omitempty"`
	Instructions *match.Instructions `json:"instructions,omitempty"`
	Styles       *match.Styles       `json:"styles,omitempty"`
}

type FrameMessage struct {
	Type    string      `json:"type"`
	DeltaMs float64     `json:"deltaMs"`
	Ops     []render.Op `json:"ops"`
}

type AudioMessage struct {
	Type   string  `json:"type"`
	Op     string  `json:"op"` // play | pause | suspend | resume
	ID     uint64  `json:"id,omitempty"`
	Sound  string  `json:"sound,omitempty"`
	URL    string  `json:"url,omitempty"`
	Loop   bool    `json:"loop,omitempty"`
	Volume float64 `json:"volume,omitempty"`
}

type ResultMessage struct {
	Type   string       `json:"type"`
	Result match.Result `json:"result"`
}

type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func errorMessage(msg string) Message {
	return Message{Type: MsgError, Payload: ErrorPayload{Message: msg}}
}

var errUnknownInput = errors.New("unknown input kind")

func errInvalid(msgType string) error {
	return fmt.Errorf("invalid %s message", msgType)
}
