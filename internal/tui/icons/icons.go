// ABOUTME: Glyphs for the game screens with a plain Unicode fallback
// ABOUTME: Picks patched-font glyphs only when the terminal is known to carry them

package icons

import (
	"os"
	"strings"
	"sync"
)

// Set selects which glyph column an Icon renders.
type Set int

const (
	Plain Set = iota
	Patched
)

// EnvVar forces a glyph set: "patched" (or "1") and "plain" (or "0").
const EnvVar = "TICTACTOE_ICONS"

var (
	active   Set
	activeMu sync.Once
)

// glyphTerminals ship a patched font by default or are commonly configured with one.
var glyphTerminals = []string{"wezterm", "kitty", "ghostty", "iterm.app", "alacritty"}

func pickSet(getenv func(string) string) Set {
	switch strings.ToLower(getenv(EnvVar)) {
	case "patched", "nerd", "1", "true":
		return Patched
	case "plain", "0", "false":
		return Plain
	}
	seen := strings.ToLower(getenv("TERM_PROGRAM") + " " + getenv("TERM"))
	for _, t := range glyphTerminals {
		if strings.Contains(seen, t) {
			return Patched
		}
	}
	return Plain
}

// Active reports the glyph set for this process, resolved once from the environment.
func Active() Set {
	activeMu.Do(func() { active = pickSet(os.Getenv) })
	return active
}

// Icon pairs a patched-font glyph with a plain Unicode one.
type Icon struct {
	Glyph string
	Plain string
}

func (i Icon) In(s Set) string {
	if s == Patched {
		return i.Glyph
	}
	return i.Plain
}

func (i Icon) String() string { return i.In(Active()) }

var (
	App     = Icon{"󰝴", "▦"}
	Game    = Icon{"󰊴", "#"}
	Player  = Icon{"", "●"}
	Trophy  = Icon{"󰔸", "★"}
	History = Icon{"󰄉", "≡"}
	Waiting = Icon{"󰔟", "…"}

	CheckOK  = Icon{"", "✓"}
	Warning  = Icon{"", "⚠"}
	Critical = Icon{"", "✗"}
	Info     = Icon{"", "ℹ"}

	Create  = Icon{"󰐕", "+"}
	Join    = Icon{"󰍉", "→"}
	Refresh = Icon{"󰑓", "↻"}
	Back    = Icon{"󰁍", "←"}
	Quit    = Icon{"󰗼", "×"}
)
