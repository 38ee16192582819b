package main

import (
	"context"
	"fmt"
	"io"

	"eu5advisor/internal/advisor"
	"eu5advisor/internal/cache"
	"eu5advisor/internal/config"
	"eu5advisor/internal/knowledge"
	"eu5advisor/internal/llm"
	"eu5advisor/internal/render"
	"eu5advisor/internal/search"
	"eu5advisor/internal/tools"
	"eu5advisor/pkg/advisortypes"
)

// app is the wired advisor stack for one process.
type app struct {
	caches    *cache.Caches
	knowledge *knowledge.Base
	search    *search.Client
	executor  *tools.Executor
	advisor   *advisor.Controller
}

// newApp builds the caches, gateways, tool executor, chat client and controller.
func newApp(ctx context.Context, cfg *config.Config, observer advisor.Observer) (*app, error) {
	caches := cache.NewCaches(cfg.KnowledgeCacheSize, cfg.SearchCacheSize)

	kb, err := knowledge.Open(ctx, cfg.KnowledgePath, caches.Knowledge)
	if err != nil {
		return nil, err
	}

	searchClient := search.New(cfg.TavilyAPIKey,
		search.WithCache(caches.Search),
		search.WithDepth(cfg.SearchDepth),
	)
	executor := tools.NewExecutor(kb, searchClient)

	client, err := llm.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	controller := advisor.New(client, executor, advisor.Options{
		Model:              cfg.Model,
		MaxHistoryMessages: cfg.MaxHistoryMessages,
		MaxToolIterations:  cfg.MaxToolIterations,
		Tools:              tools.Definitions(topicsOf(kb)),
		Observer:           observer,
	})

	return &app{
		caches:    caches,
		knowledge: kb,
		search:    searchClient,
		executor:  executor,
		advisor:   controller,
	}, nil
}

// topicsOf lists the knowledge base categories and subcategories for the tool schema.
func topicsOf(kb *knowledge.Base) tools.Topics {
	topics := tools.Topics{
		Categories:    kb.Categories(),
		Subcategories: make(map[string][]string),
	}
	for _, category := range topics.Categories {
		topics.Subcategories[category] = kb.Subcategories(category)
	}
	return topics
}

// observerFor echoes tool activity to w when verbose is set.
func observerFor(verbose bool, renderer *render.Renderer, w io.Writer) advisor.Observer {
	if !verbose {
		return advisor.Observer{}
	}
	return advisor.Observer{
		OnToolCall: func(call advisortypes.ToolCall) {
			fmt.Fprintln(w, renderer.Notice(fmt.Sprintf("  → %s(%s)", call.Name, call.Arguments)))
		},
		OnToolResult: func(_ advisortypes.ToolCall, result string) {
			fmt.Fprintln(w, renderer.Notice("  ✓ Result: "+render.Preview(result, previewLength)))
		},
		OnTrim: func(dropped, limit int) {
			fmt.Fprintln(w, renderer.Notice(fmt.Sprintf("  trimmed %d old messages (limit %d)", dropped, limit)))
		},
	}
}
