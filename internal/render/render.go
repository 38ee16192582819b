// Package render formats advisor output for the terminal: markdown answers through
// Glamour, and banner, help and answer panels through Lip Gloss.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"eu5advisor/internal/logger"
)

// DefaultWordWrap is the markdown wrap width.
const DefaultWordWrap = 80

// Renderer renders markdown and panels for one output stream.
type Renderer struct {
	style    string
	wordWrap int
	markdown *glamour.TermRenderer
	lg       *lipgloss.Renderer
}

// New creates a renderer for w. The terminal profile decides the markdown style:
// plain text for ASCII terminals and pipes, automatic dark/light detection otherwise.
func New(w io.Writer, profile termenv.Profile) (*Renderer, error) {
	style := styleFor(profile)

	markdown, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(DefaultWordWrap),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	lg := lipgloss.NewRenderer(w)
	lg.SetColorProfile(profile)

	logger.Debug("Renderer initialized", "style", style, "profile", profile)
	return &Renderer{
		style:    style,
		wordWrap: DefaultWordWrap,
		markdown: markdown,
		lg:       lg,
	}, nil
}

// ForWriter creates a renderer using the profile detected for w.
func ForWriter(w io.Writer) (*Renderer, error) {
	return New(w, termenv.NewOutput(w).Profile)
}

// Style returns the Glamour style in use.
func (r *Renderer) Style() string {
	return r.style
}

// Markdown renders text as terminal markdown. Rendering failures return the raw text.
func (r *Renderer) Markdown(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	rendered, err := r.markdown.Render(text)
	if err != nil {
		logger.Debug("Markdown rendering failed, using raw text", "error", err)
		return text
	}
	return strings.Trim(rendered, "\n")
}

func styleFor(profile termenv.Profile) string {
	if profile == termenv.Ascii {
		return "notty"
	}
	return "auto"
}
