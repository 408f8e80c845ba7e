package main

import (
	"fmt"
	"strings"
)

// progressMode is the value of the --ui flag of check.
type progressMode uint8

const (
	progressAuto progressMode = iota
	progressAlways
	progressNever
)

var progressModeNames = map[string]progressMode{
	"":     progressAuto,
	"auto": progressAuto,
	"on":   progressAlways,
	"off":  progressNever,
}

func (m progressMode) String() string {
	switch m {
	case progressAlways:
		return "on"
	case progressNever:
		return "off"
	}
	return "auto"
}

// parseProgressMode reads a --ui value; case and surrounding blanks are
// ignored.
func parseProgressMode(value string) (progressMode, error) {
	m, ok := progressModeNames[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return progressAuto, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
	return m, nil
}

// showProgress reports whether check draws the live per-file table
// instead of printing results only at the end. In auto mode a lone file,
// --quiet or a non-terminal stdout all turn the table off.
func (m progressMode) showProgress(files int, quiet, tty bool) bool {
	switch m {
	case progressAlways:
		return true
	case progressNever:
		return false
	}
	return tty && !quiet && files > 1
}
