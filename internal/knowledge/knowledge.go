// Package knowledge serves curated EU5 markdown documents from a category/topic manifest.
package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/viant/afs"
	afsurl "github.com/viant/afs/url"

	"eu5advisor/internal/cache"
	"eu5advisor/internal/config"
	"eu5advisor/internal/logger"
	"eu5advisor/pkg/advisortypes"
)

// Base is a knowledge base rooted at a local directory or any afs-supported URL.
// It is safe for concurrent use.
type Base struct {
	fs       afs.Service
	root     string
	manifest *Manifest
	cache    *cache.LRU[string, advisortypes.KnowledgeResult]
	logger   *log.Logger
}

// Open prepares a knowledge base at location. An index.yaml at the root replaces the
// built-in manifest. A nil cache disables caching.
func Open(ctx context.Context, location string, results *cache.LRU[string, advisortypes.KnowledgeResult]) (*Base, error) {
	fs := afs.New()
	root := strings.TrimRight(config.KnowledgeURL(location), "/")

	exists, err := fs.Exists(ctx, root)
	if err != nil || !exists {
		return nil, fmt.Errorf("knowledge base not found at: %s", location)
	}

	manifest, err := loadManifest(ctx, fs, root)
	if err != nil {
		return nil, err
	}

	return &Base{
		fs:       fs,
		root:     root,
		manifest: manifest,
		cache:    results,
		logger:   logger.NewStyledLogger("Knowledge"),
	}, nil
}

func loadManifest(ctx context.Context, fs afs.Service, root string) (*Manifest, error) {
	location := afsurl.Join(root, ManifestFile)
	if ok, _ := fs.Exists(ctx, location); !ok {
		return DefaultManifest()
	}
	data, err := fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	return ParseManifest(data)
}

// Root returns the resolved URL of the knowledge base.
func (b *Base) Root() string {
	return b.root
}

// Manifest returns the category/topic table in use.
func (b *Base) Manifest() *Manifest {
	return b.manifest
}

// Categories returns the category names in manifest order.
func (b *Base) Categories() []string {
	return b.manifest.CategoryNames()
}

// Subcategories returns the topic names of category in manifest order, or nil for an
// unknown category.
func (b *Base) Subcategories(category string) []string {
	cat, ok := b.manifest.Category(category)
	if !ok {
		return nil
	}
	return cat.TopicNames()
}

// Lookup returns the document for category/subcategory. An empty subcategory either
// resolves to the category default or produces a listing of the available topics.
// Failures are reported in the result, never as a Go error.
func (b *Base) Lookup(ctx context.Context, category, subcategory string) advisortypes.KnowledgeResult {
	cat, ok := b.manifest.Category(category)
	if !ok {
		return advisortypes.KnowledgeFailure(fmt.Sprintf("Invalid category '%s'. Available: %s",
			category, formatNames(b.manifest.CategoryNames())))
	}

	if subcategory == "" {
		if cat.Default == "" {
			return advisortypes.KnowledgeListing(fmt.Sprintf("Please specify a subcategory. Available in '%s': %s",
				category, strings.Join(cat.TopicNames(), ", ")))
		}
		subcategory = cat.Default
	}

	topic, ok := cat.Topic(subcategory)
	if !ok {
		msg := fmt.Sprintf("Invalid subcategory '%s' for '%s'. Available: %s",
			subcategory, category, strings.Join(cat.TopicNames(), ", "))
		if hints := suggest(subcategory, cat.TopicNames()); len(hints) > 0 {
			msg += fmt.Sprintf(". Did you mean: %s?", strings.Join(hints, ", "))
		}
		return advisortypes.KnowledgeFailure(msg)
	}

	key := fmt.Sprintf("knowledge:%s:%s:%s", b.root, category, subcategory)
	if b.cache != nil {
		if cached, hit := b.cache.Get(key); hit {
			b.logger.Debug("knowledge cache hit", "key", key)
			return cached
		}
	}

	location := afsurl.Join(b.root, topic.File)
	if exists, err := b.fs.Exists(ctx, location); err != nil || !exists {
		return advisortypes.KnowledgeFailure(fmt.Sprintf("Knowledge file not found: %s", topic.File))
	}

	data, err := b.fs.DownloadWithURL(ctx, location)
	if err != nil {
		b.logger.Warn("knowledge read failed", "file", topic.File, "error", err)
		return advisortypes.KnowledgeFailure(fmt.Sprintf("Failed to read %s: %v", topic.File, err))
	}

	result := advisortypes.KnowledgeFoundResult(string(data), sourceLabel(category, subcategory), topic.File)
	if b.cache != nil {
		b.cache.Set(key, result)
	}
	b.logger.Debug("knowledge loaded", "file", topic.File, "size", result.Size)
	return result
}

// Entry describes one topic of the knowledge base for listings.
type Entry struct {
	Category string
	Topic    string
	File     string
	Title    string
	Size     int
	Missing  bool
}

// Entries lists every topic in manifest order with the title of its document.
func (b *Base) Entries(ctx context.Context) []Entry {
	var entries []Entry
	for _, cat := range b.manifest.Categories {
		for _, topic := range cat.Topics {
			entry := Entry{Category: cat.Name, Topic: topic.Name, File: topic.File}
			result := b.Lookup(ctx, cat.Name, topic.Name)
			if result.Outcome == advisortypes.KnowledgeFound {
				entry.Title = DocumentTitle([]byte(result.Text))
				entry.Size = result.Size
			} else {
				entry.Missing = true
			}
			entries = append(entries, entry)
		}
	}
	return entries
}

func sourceLabel(category, subcategory string) string {
	if subcategory == "" {
		return category
	}
	return category + "/" + subcategory
}

func formatNames(names []string) string {
	quoted := lo.Map(names, func(name string, _ int) string { return "'" + name + "'" })
	return "[" + strings.Join(quoted, ", ") + "]"
}

// suggest returns candidates close to input, either as a fuzzy subsequence match or
// within two edits.
func suggest(input string, candidates []string) []string {
	if input == "" {
		return nil
	}
	return lo.Filter(candidates, func(candidate string, _ int) bool {
		return fuzzy.MatchFold(input, candidate) ||
			fuzzy.LevenshteinDistance(strings.ToLower(input), candidate) <= 2
	})
}
