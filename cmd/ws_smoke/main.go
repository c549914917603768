package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"tap_duel/internal/logger"

	"github.com/gorilla/websocket"
)

// ws_smoke plays one full match against a running server: it takes a
// session token, waits for ready, starts, and presses left shift until
// someone wins.
func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	addr := flag.String("addr", "127.0.0.1:"+port, "server host:port")
	timeout := flag.Duration("timeout", 30*time.Second, "overall deadline")
	flag.Parse()

	token, deviceID, err := createSession("http://" + *addr + "/api/v1/session")
	if err != nil {
		logger.Fatal("create session", "error", err)
	}
	logger.Info("session created", "device_id", deviceID)

	wsURL := fmt.Sprintf("ws://%s/ws?token=%s&w=800&h=600", *addr, token)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		logger.Fatal("dial", "url", wsURL, "error", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(*timeout)
	send := func(v any) {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(v); err != nil {
			logger.Fatal("write", "error", err)
		}
	}
	keyUp := func(code string) {
		send(map[string]any{"type": "input", "kind": "keyup", "code": code})
	}

	frames := 0
	for {
		conn.SetReadDeadline(deadline)
		_, raw, err := conn.ReadMessage()
		if err != nil {
			logger.Fatal("read", "error", err)
		}
		var msg map[string]any
		if err := json.Unmarshal(raw, &msg); err != nil {
			logger.Fatal("decode", "error", err)
		}

		switch msg["type"] {
		case "frame":
			frames++
		case "state":
			logger.Info("state", "state", msg["state"], "previous", msg["previous"])
			switch msg["state"] {
			case "ready":
				keyUp("Space")
			case "play":
				keyUp("ShiftLeft")
			}
		case "audio":
			if msg["op"] == "play" && msg["loop"] != true {
				// report completion so the server drops it from its playlist
				send(map[string]any{"type": "audio_ended", "id": msg["id"]})
			}
			if msg["sound"] == "score" {
				keyUp("ShiftLeft")
			}
		case "error":
			logger.Warn("server error", "payload", msg["payload"])
		case "result":
			out, _ := json.Marshal(msg["result"])
			logger.Info("smoke test finished", "frames", frames, "result", string(out))
			return
		}
	}
}

func createSession(url string) (token, deviceID string, err error) {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Post(url, "application/json", nil)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("session: status %d", resp.StatusCode)
	}
	var body struct {
		Token    string `json:"token"`
		DeviceID string `json:"device_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", "", fmt.Errorf("session: %w", err)
	}
	return body.Token, body.DeviceID, nil
}
