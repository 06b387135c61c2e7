package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
)

var (
	kbSearchK int
	kbJSON    bool
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Inspect and manage the knowledge base",
	RunE:  runKBStats,
}

var kbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base status",
	RunE:  runKBStats,
}

var kbClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the knowledge base",
	Long:  `Removes every chunk, including the saved copy, and turns off knowledge base answers.`,
	RunE:  runKBClear,
}

var kbSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Show the chunks that best match a query",
	Long: `Ranks knowledge base chunks by the number of words they share with the
query and prints the best matches. This is the context an answer would use.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runKBSearch,
}

func init() {
	kbCmd.PersistentFlags().BoolVar(&kbJSON, "json", false, "output as JSON")
	kbSearchCmd.Flags().IntVarP(&kbSearchK, "top", "k", 3, "number of chunks to show")
	kbCmd.AddCommand(kbStatsCmd, kbClearCmd, kbSearchCmd)
	rootCmd.AddCommand(kbCmd)
}

func runKBStats(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}
	stats := knowledgeService.Stats()

	if kbJSON {
		return printJSON(cmd, stats)
	}

	cmd.Printf("Status: %s\n", stats.Status)
	cmd.Printf("Chunks: %d\n", stats.Count)
	if !stats.BuiltAt.IsZero() {
		cmd.Printf("Built:  %s\n", stats.BuiltAt.Local().Format(time.DateTime))
	}
	if len(stats.Sources) > 0 {
		cmd.Println("Sources:")
		for _, s := range stats.Sources {
			cmd.Printf("  - %s\n", s)
		}
	}
	return nil
}

func runKBClear(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	switch {
	case conversationService != nil:
		if err := conversationService.ClearKnowledge(ctx); err != nil {
			return fmt.Errorf("clear failed: %w", err)
		}
	case knowledgeService != nil:
		if err := knowledgeService.Clear(ctx); err != nil {
			return fmt.Errorf("clear failed: %w", err)
		}
	default:
		return errors.New("knowledge service not configured")
	}
	cmd.Println("Knowledge base cleared.")
	return nil
}

func runKBSearch(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}
	results := knowledgeService.Search(strings.Join(args, " "), kbSearchK)

	if kbJSON {
		return printJSON(cmd, searchView(results))
	}

	if len(results) == 0 {
		cmd.Println("No matching chunks.")
		return nil
	}
	for i, r := range results {
		cmd.Printf("  [%d] score %d  %s\n", i+1, r.Score, chunkLocation(r.Chunk))
		cmd.Printf("      %s\n\n", snippet(r.Chunk.Content, 200))
	}
	return nil
}

type searchHit struct {
	Score    int            `json:"score"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func searchView(results []domain.RankedResult) []searchHit {
	hits := make([]searchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, searchHit{Score: r.Score, Content: r.Chunk.Content, Metadata: r.Chunk.Metadata})
	}
	return hits
}

// chunkLocation describes where a chunk came from, e.g. "policy.pdf p.3".
func chunkLocation(c domain.Chunk) string {
	loc := c.Source()
	if page, ok := c.Metadata[domain.MetaPage].(int); ok {
		loc += fmt.Sprintf(" p.%d", page+1)
	}
	return loc
}

func snippet(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
