// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Glyphs for courses, bookmarks, enrollment and browser actions

package icons

import (
	"os"
	"strings"
	"sync"
)

// NerdFontsEnv forces Nerd Font glyphs on ("1", "true") or off
const NerdFontsEnv = "LEARN_NERD_FONTS"

var (
	useNerdFonts     bool
	nerdFontDetected sync.Once
)

var nerdFontTerminals = []string{
	"iTerm.app",
	"alacritty",
	"WezTerm",
	"kitty",
	"ghostty",
}

func detectNerdFonts(getenv func(string) string) bool {
	if env := getenv(NerdFontsEnv); env != "" {
		return env == "1" || strings.EqualFold(env, "true")
	}

	term := getenv("TERM")
	termProgram := getenv("TERM_PROGRAM")
	for _, t := range nerdFontTerminals {
		if strings.Contains(termProgram, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}
	return getenv("NERD_FONTS") == "1"
}

// HasNerdFonts reports whether Nerd Font glyphs are in use.
// Detection runs once per process.
func HasNerdFonts() bool {
	nerdFontDetected.Do(func() {
		useNerdFonts = detectNerdFonts(os.Getenv)
	})
	return useNerdFonts
}

// Icon is a glyph with a Nerd Font and a plain Unicode variant
type Icon struct {
	NerdFont string
	Fallback string
}

func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

var (
	App        = Icon{"󰑴", "◈"} // nf-md-school
	Course     = Icon{"󰂺", "▤"} // nf-md-book_open_page_variant
	Bookmark   = Icon{"󰃀", "★"} // nf-md-bookmark
	Enrolled   = Icon{"󰄬", "●"} // nf-md-check
	Completed  = Icon{"󰄭", "✓"} // nf-md-check_all
	Instructor = Icon{"󰀄", "☺"} // nf-md-account
	Rating     = Icon{"󰓎", "☆"} // nf-md-star
	Search     = Icon{"󰍉", "⌕"} // nf-md-magnify
	Recommend  = Icon{"󰛨", "✦"} // nf-md-lightbulb_on

	Refresh = Icon{"󰑓", "↻"} // nf-md-refresh
	Back    = Icon{"󰁍", "←"} // nf-md-arrow_left
	Quit    = Icon{"󰗼", "×"} // nf-md-exit_to_app
	Warning = Icon{"", "⚠"} // nf-oct-alert
)
