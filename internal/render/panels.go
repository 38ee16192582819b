package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"eu5advisor/internal/cache"
)

const (
	colorCyan   = lipgloss.Color("6")
	colorGreen  = lipgloss.Color("2")
	colorYellow = lipgloss.Color("3")
	colorRed    = lipgloss.Color("1")
	colorDim    = lipgloss.Color("8")
)

// AnswerTitle heads every answer panel.
const AnswerTitle = "EU5 Strategy Advisor"

const goodbyeText = "Goodbye! May your empire prosper!"

const helpText = `**Available Commands:**
- Type your EU5 strategy question to get advice
- ` + "`reset`" + ` - Start a new conversation
- ` + "`stats`" + ` - Show cache statistics
- ` + "`help`" + ` - Show this help message
- ` + "`quit`" + ` or ` + "`exit`" + ` - Exit the program

**Example Questions:**
- "How do estates work in EU5?"
- "What are the best opening moves for England?"
- "I'm new to EU5. Which nation should I start with?"
- "How does the market system work?"
- "What are common beginner mistakes?"`

// Panel draws body inside a rounded border with a bold title line above it.
func (r *Renderer) Panel(title, body string, color lipgloss.Color) string {
	heading := r.lg.NewStyle().Bold(true).Foreground(color).Render(title)
	box := r.lg.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, heading, box)
}

// Answer renders an advisor reply as a markdown panel.
func (r *Renderer) Answer(text string) string {
	return r.Panel(AnswerTitle, r.Markdown(text), colorCyan)
}

// Help renders the interactive command help.
func (r *Renderer) Help() string {
	return r.Panel("Help", r.Markdown(helpText), colorGreen)
}

// Banner renders the start-up banner naming the active model.
func (r *Renderer) Banner(model string, webSearch bool) string {
	search := "web search enabled"
	if !webSearch {
		search = "web search disabled"
	}

	title := r.lg.NewStyle().
		Bold(true).
		Foreground(colorCyan).
		Border(lipgloss.DoubleBorder()).
		BorderForeground(colorCyan).
		Width(67).
		Align(lipgloss.Center).
		Render("EU5 STRATEGY ADVISOR")

	subtitle := r.lg.NewStyle().Foreground(colorCyan).Render(
		"Expert strategic guidance for Europa Universalis 5 (1337-1837)\n" +
			fmt.Sprintf("Powered by %s, %s", model, search))

	return lipgloss.JoinVertical(lipgloss.Left, title, "", subtitle)
}

// Ready is the prompt shown once the interactive session starts.
func (r *Renderer) Ready() string {
	return r.lg.NewStyle().Bold(true).Foreground(colorGreen).Render("Ready!") +
		" Ask me anything about EU5 strategy."
}

// Goodbye renders the farewell line printed when a session ends.
func (r *Renderer) Goodbye() string {
	return r.lg.NewStyle().Bold(true).Foreground(colorCyan).Render(goodbyeText)
}

// Query echoes a single-mode question.
func (r *Renderer) Query(text string) string {
	return r.lg.NewStyle().Bold(true).Foreground(colorYellow).Render("Query:") + " " + text
}

// Error renders an error line.
func (r *Renderer) Error(err error) string {
	return r.lg.NewStyle().Bold(true).Foreground(colorRed).Render("Error:") + " " + err.Error()
}

// Notice renders a dimmed status line such as "Conversation reset".
func (r *Renderer) Notice(text string) string {
	return r.lg.NewStyle().Foreground(colorDim).Render(text)
}

// Stats renders knowledge and search cache statistics as a panel.
func (r *Renderer) Stats(knowledge, search cache.Stats) string {
	var b strings.Builder
	writeStats(&b, "Knowledge cache", knowledge)
	b.WriteString("\n")
	writeStats(&b, "Search cache", search)
	return r.Panel("Cache Statistics", b.String(), colorGreen)
}

func writeStats(b *strings.Builder, name string, s cache.Stats) {
	fmt.Fprintf(b, "%s: %d/%d entries\n", name, s.Size, s.Capacity)
	fmt.Fprintf(b, "  hits %d, misses %d, evictions %d, hit rate %s", s.Hits, s.Misses, s.Evictions, hitRate(s))
}

func hitRate(s cache.Stats) string {
	total := s.Hits + s.Misses
	if total == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", float64(s.Hits)*100/float64(total))
}

// Preview shortens text to n display cells, appending "..." when anything was cut.
func Preview(text string, n int) string {
	if n <= 0 || ansi.StringWidth(text) <= n {
		return text
	}
	return ansi.Truncate(text, n, "") + "..."
}
