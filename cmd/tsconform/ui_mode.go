package main

import (
	"fmt"
	"os"
	"strings"
)

// boardSetting is the parsed value of --ui.
type boardSetting int

const (
	boardAuto boardSetting = iota
	boardOn
	boardOff
)

func parseBoardSetting(value string) (boardSetting, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return boardAuto, nil
	case "on":
		return boardOn, nil
	case "off":
		return boardOff, nil
	}
	return boardAuto, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// wantBoard decides whether the live progress board drives the run. CI runs
// never show the board; on auto, stdout must be a terminal.
func wantBoard(s boardSetting, ci bool) bool {
	if ci {
		return false
	}
	switch s {
	case boardOn:
		return true
	case boardOff:
		return false
	}
	return isTerminal(os.Stdout)
}
