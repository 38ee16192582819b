// Package shell provides the interactive advisor session.
// It reads lines through ishell and routes them to session commands or the advisor.
package shell

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/abiosoft/ishell/v2"

	"eu5advisor/internal/cache"
	"eu5advisor/internal/logger"
	"eu5advisor/internal/render"
)

// Prompt is shown before every question.
const Prompt = "You> "

// Advisor is the conversation a session drives.
type Advisor interface {
	Converse(ctx context.Context, text string) (string, error)
	Reset()
}

// Session routes interactive input. Words reserved for session commands are matched
// case-insensitively; everything else is a question for the advisor.
type Session struct {
	advisor  Advisor
	caches   *cache.Caches
	renderer *render.Renderer
	out      io.Writer
}

// NewSession creates a session writing to out. caches may be nil, in which case the
// stats command reports that caching is off.
func NewSession(advisor Advisor, caches *cache.Caches, renderer *render.Renderer, out io.Writer) *Session {
	return &Session{
		advisor:  advisor,
		caches:   caches,
		renderer: renderer,
		out:      out,
	}
}

// ProcessInput handles one line of input and reports whether the session continues.
func (s *Session) ProcessInput(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	switch strings.ToLower(input) {
	case "quit", "exit", "q":
		s.printBlock(s.renderer.Goodbye())
		return false
	case "reset":
		s.advisor.Reset()
		logger.Debug("Conversation reset")
		s.printBlock(s.renderer.Notice("Conversation reset"))
	case "help":
		s.printBlock(s.renderer.Help())
	case "stats":
		if s.caches == nil {
			s.printBlock(s.renderer.Notice("Caching is disabled"))
			break
		}
		s.printBlock(s.renderer.Stats(s.caches.Knowledge.Stats(), s.caches.Search.Stats()))
	default:
		s.ask(ctx, input)
	}
	return true
}

func (s *Session) ask(ctx context.Context, question string) {
	answer, err := s.advisor.Converse(ctx, question)
	if err != nil {
		logger.Error("Question failed", "error", err)
		s.printBlock(s.renderer.Error(err))
		return
	}
	s.printBlock(s.renderer.Answer(answer))
}

func (s *Session) printBlock(text string) {
	fmt.Fprintf(s.out, "\n%s\n\n", text)
}

// Intro writes the banner, the help panel and the ready line.
func (s *Session) Intro(banner string) {
	fmt.Fprintln(s.out, banner)
	fmt.Fprintln(s.out, s.renderer.Help())
	s.printBlock(s.renderer.Ready())
}

// Run reads lines from the terminal until the user quits, input ends or ctx is done.
// Lines are read raw so apostrophes and quotes reach the advisor untouched.
func (s *Session) Run(ctx context.Context, banner string) {
	sh := ishell.New()
	sh.SetPrompt(Prompt)
	defer sh.Close()

	s.Intro(banner)

	for ctx.Err() == nil {
		line, err := sh.ReadLineErr()
		if err != nil {
			logger.Debug("Input closed", "error", err)
			s.printBlock(s.renderer.Goodbye())
			return
		}
		if !s.ProcessInput(ctx, line) {
			return
		}
	}
}
