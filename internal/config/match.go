package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrInvalidMatch reports a match configuration with unusable settings.
var ErrInvalidMatch = errors.New("invalid match config")

// Settings holds the names, texts and thresholds of one configured match.
type Settings struct {
	Name                string  `json:"name"`
	Player1             string  `json:"player1"`
	Player2             string  `json:"player2"`
	StartText           string  `json:"startText"`
	ButtonText          string  `json:"buttonText"`
	RestartText         string  `json:"restartText"`
	GoText              string  `json:"goText"`
	WinText             string  `json:"winText"` // {player} is replaced by the winner's name
	InstructionsDesktop string  `json:"instructionsDesktop"`
	InstructionsMobile  string  `json:"instructionsMobile"`
	WinBy               int     `json:"winBy"`
	CountDown           int     `json:"countDown"`
	PlayerSize          float64 `json:"playerSize"` // fraction of the shorter surface side
	FontFamily          string  `json:"fontFamily"`
	ShowTopbar          bool    `json:"showTopbar"`
}

// MatchConfig is the structured match configuration. Images and Sounds map a
// resource name to its locator.
type MatchConfig struct {
	Settings Settings          `json:"settings"`
	Colors   map[string]string `json:"colors"`
	Images   map[string]string `json:"images"`
	Sounds   map[string]string `json:"sounds"`
}

// WinBanner renders the winner banner text for name
func (c MatchConfig) WinBanner(name string) string {
	return strings.ReplaceAll(c.Settings.WinText, "{player}", name)
}

func DefaultMatch() MatchConfig {
	return MatchConfig{
		Settings: Settings{
			Name:                "Tap Duel",
			Player1:             "Left",
			Player2:             "Right",
			StartText:           "Tap Duel",
			ButtonText:          "Start",
			RestartText:         "Play again",
			GoText:              "GO",
			WinText:             "{player} wins!",
			InstructionsDesktop: "Left Shift and Right Shift to score, Space to start",
			InstructionsMobile:  "Tap your paddle as fast as you can",
			WinBy:               10,
			CountDown:           3,
			PlayerSize:          0.25,
			FontFamily:          "sans-serif",
			ShowTopbar:          true,
		},
		Colors: map[string]string{
			"background": "#10131a",
			"player1":    "#3ddc84",
			"player2":    "#ff5c5c",
			"text":       "#ffffff",
			"pointText":  "#ffd54a",
			"banner":     "#202533",
		},
		Images: map[string]string{
			"player1":    "images/player1.png",
			"player2":    "images/player2.png",
			"background": "images/background.png",
		},
		Sounds: map[string]string{
			"score": "sounds/score.wav",
			"win":   "sounds/win.wav",
			"music": "sounds/music.mp3",
		},
	}
}

// ParseMatch decodes a match configuration over the defaults
func ParseMatch(data []byte) (MatchConfig, error) {
	cfg := DefaultMatch()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return MatchConfig{}, fmt.Errorf("parse match config: %w", err)
	}
	if cfg.Settings.WinBy < 1 {
		return MatchConfig{}, fmt.Errorf("%w: winBy must be at least 1, got %d", ErrInvalidMatch, cfg.Settings.WinBy)
	}
	if cfg.Settings.CountDown < 0 {
		return MatchConfig{}, fmt.Errorf("%w: countDown must not be negative, got %d", ErrInvalidMatch, cfg.Settings.CountDown)
	}
	return cfg, nil
}

// LoadMatch reads the match configuration at path; an empty path yields the defaults
func LoadMatch(path string) (MatchConfig, error) {
	if path == "" {
		return DefaultMatch(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return MatchConfig{}, fmt.Errorf("read match config: %w", err)
	}
	return ParseMatch(b)
}
