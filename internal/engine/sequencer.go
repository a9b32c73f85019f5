package engine

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/vovakirdan/tui-quest/internal/core"
)

// Query parameter names used for resume and deep links.
const (
	ParamScene  = "scene"
	ParamDialog = "dialog"
	ParamLang   = "lang"

	DefaultLang = "en"
)

// Sequencer is the quest position cursor. It moves only through explicit
// Advance or Seek calls and never checks bounds; the content graph decides
// which moves are valid.
type Sequencer struct {
	pos core.Position
}

// NewSequencer creates a cursor at start.
func NewSequencer(start core.Position) *Sequencer {
	return &Sequencer{pos: start}
}

// Position returns the current cursor.
func (s *Sequencer) Position() core.Position {
	return s.pos
}

// Advance moves the cursor by a relative delta.
func (s *Sequencer) Advance(d core.Delta) {
	s.pos.Scene += d.Scene
	s.pos.Dialog += d.Dialog
}

// Seek moves the cursor to an absolute position.
func (s *Sequencer) Seek(p core.Position) {
	s.pos = p
}

// Query encodes the cursor and locale as a resume query string.
func (s *Sequencer) Query(lang string) string {
	v := url.Values{}
	v.Set(ParamScene, strconv.Itoa(s.pos.Scene))
	v.Set(ParamDialog, strconv.Itoa(s.pos.Dialog))
	if lang != "" {
		v.Set(ParamLang, lang)
	}
	return v.Encode()
}

// Resume holds the parameters a session can be seeded with.
type Resume struct {
	Position core.Position
	Lang     string

	// Explicit is true when the query named a scene or dialog.
	Explicit bool
}

// ParseResume reads scene, dialog and lang from a query string such as
// "?scene=1&dialog=2&lang=de". Missing or malformed values fall back to
// (0,0) and "en".
func ParseResume(raw string) Resume {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "?")
	// ParseQuery keeps every well-formed pair even when it reports an error.
	values, _ := url.ParseQuery(raw)

	r := Resume{Lang: DefaultLang}
	if v := values.Get(ParamScene); v != "" {
		r.Explicit = true
		r.Position.Scene = atoiOrZero(v)
	}
	if v := values.Get(ParamDialog); v != "" {
		r.Explicit = true
		r.Position.Dialog = atoiOrZero(v)
	}
	if v := strings.TrimSpace(values.Get(ParamLang)); v != "" {
		r.Lang = v
	}
	return r
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
