package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity. Each level admits events up to a
// scope; LevelError admits none and only feeds the crash dump.
type Level uint8

const (
	LevelOff Level = iota
	LevelError
	LevelPhase  // driver and analyze_file spans
	LevelDetail // plus one span per body
	LevelDebug  // plus every move and init record
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

// deepest scope admitted per level; 0 admits nothing
var levelScopes = [...]Scope{0, 0, ScopePass, ScopeBody, ScopeNode}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel parses a level name, ignoring case.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(s)
	for i, name := range levelNames {
		if s == name {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope pass this level.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(levelScopes) {
		return false
	}
	return scope != 0 && scope <= levelScopes[l]
}
