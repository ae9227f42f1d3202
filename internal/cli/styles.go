package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	accentColor = lipgloss.Color("#A78BFA")
	mutedColor  = lipgloss.Color("#9CA3AF")
	borderColor = lipgloss.Color("#6B7280")
	okColor     = lipgloss.Color("#10B981")
)

type styles struct {
	frame  lipgloss.Style
	header lipgloss.Style
	muted  lipgloss.Style
	ok     lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{
			frame:  plain.Border(lipgloss.NormalBorder()).Padding(0, 1),
			header: plain,
			muted:  plain,
			ok:     plain,
		}
	}
	return styles{
		frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1),
		header: lipgloss.NewStyle().Bold(true).Foreground(accentColor),
		muted:  lipgloss.NewStyle().Foreground(mutedColor),
		ok:     lipgloss.NewStyle().Foreground(okColor),
	}
}

// renderFrame boxes one drawn frame: a title line, then the body lines.
func (x styles) renderFrame(title string, lines ...string) string {
	body := x.header.Render(title)
	if len(lines) != 0 {
		body += "\n" + strings.Join(lines, "\n")
	}
	return x.frame.Render(body)
}

func (x styles) field(key string, value any) string {
	return x.muted.Render(key+`:`) + ` ` + fmt.Sprint(value)
}
