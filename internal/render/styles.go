package render

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	colorPrimary   = lipgloss.Color("#8B5CF6") // violet
	colorSecondary = lipgloss.Color("#06B6D4") // cyan
	colorAccent    = lipgloss.Color("#F59E0B") // amber
	colorSuccess   = lipgloss.Color("#10B981") // emerald
	colorError     = lipgloss.Color("#EF4444") // red
	colorMuted     = lipgloss.Color("#6B7280") // gray
)

// styles is the set of styles used for one output stream.
type styles struct {
	header  lipgloss.Style
	pos     lipgloss.Style
	errKind lipgloss.Style
	message lipgloss.Style
	ok      lipgloss.Style

	kinds [5]lipgloss.Style // indexed by syntax.Kind

	name  lipgloss.Style
	value lipgloss.Style
}

// newStyles binds the palette to w. With NoColor set, or when w is not
// a terminal, every style renders plain text.
func newStyles(w io.Writer) *styles {
	r := lipgloss.NewRenderer(w)
	s := &styles{}
	if NoColor {
		plain := r.NewStyle()
		s.header, s.pos, s.errKind, s.message, s.ok = plain, plain, plain, plain, plain
		s.name, s.value = plain, plain
		for i := range s.kinds {
			s.kinds[i] = plain
		}
		return s
	}

	s.header = r.NewStyle().Foreground(colorPrimary).Bold(true)
	s.pos = r.NewStyle().Foreground(colorMuted)
	s.errKind = r.NewStyle().Foreground(colorError).Bold(true)
	s.message = r.NewStyle()
	s.ok = r.NewStyle().Foreground(colorSuccess)

	s.kinds = [5]lipgloss.Style{
		r.NewStyle().Foreground(colorAccent),             // INTEGER
		r.NewStyle().Foreground(colorSecondary),          // IDENTIFIER
		r.NewStyle().Foreground(colorPrimary).Bold(true), // KEYWORD
		r.NewStyle().Foreground(colorSuccess),            // OPERATOR
		r.NewStyle().Foreground(colorMuted),              // PUNCTUATION
	}

	s.name = r.NewStyle().Foreground(colorSecondary)
	s.value = r.NewStyle().Foreground(colorAccent).Bold(true)
	return s
}
