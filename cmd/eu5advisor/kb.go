package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss/list"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"eu5advisor/internal/knowledge"
)

// kbCmd groups knowledge base commands.
var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Inspect the knowledge base",
}

// kbListCmd prints every category and topic with its document title.
var kbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List knowledge categories, topics and document titles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		kb, err := knowledge.Open(cmd.Context(), cfg.KnowledgePath, nil)
		if err != nil {
			return err
		}
		printKnowledge(cmd.OutOrStdout(), kb.Root(), kb.Entries(cmd.Context()))
		return nil
	},
}

func init() {
	kbCmd.AddCommand(kbListCmd)
}

// printKnowledge renders entries as a category tree.
func printKnowledge(w io.Writer, root string, entries []knowledge.Entry) {
	tree := list.New().Enumerator(list.Bullet)
	for _, group := range groupByCategory(entries) {
		topics := list.New().Enumerator(list.Dash)
		for _, entry := range group {
			topics.Item(describeEntry(entry))
		}
		tree.Item(group[0].Category).Item(topics)
	}

	fmt.Fprintf(w, "Knowledge base: %s\n\n", root)
	fmt.Fprintln(w, tree.String())

	missing := lo.CountBy(entries, func(e knowledge.Entry) bool { return e.Missing })
	fmt.Fprintf(w, "\n%d topics, %d missing\n", len(entries), missing)
}

func groupByCategory(entries []knowledge.Entry) [][]knowledge.Entry {
	var groups [][]knowledge.Entry
	for _, entry := range entries {
		if n := len(groups); n > 0 && groups[n-1][0].Category == entry.Category {
			groups[n-1] = append(groups[n-1], entry)
			continue
		}
		groups = append(groups, []knowledge.Entry{entry})
	}
	return groups
}

func describeEntry(entry knowledge.Entry) string {
	switch {
	case entry.Missing:
		return fmt.Sprintf("%s (missing: %s)", entry.Topic, entry.File)
	case entry.Title != "":
		return fmt.Sprintf("%s: %s", entry.Topic, entry.Title)
	default:
		return entry.Topic
	}
}
