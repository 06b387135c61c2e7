package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/voxdesk/internal/adapters/driven/watch"
	"github.com/custodia-labs/voxdesk/internal/core/domain"
)

var (
	ingestJS    bool
	ingestWatch bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file-or-url...]",
	Short: "Build the knowledge base from documents",
	Long: `Loads files (.txt, .md, .pdf, .docx, .doc, .html) and web pages, splits them
into paragraphs and replaces the knowledge base with the result.

Each run defines the full content of the knowledge base: pass every source
you want included. A failed build keeps the previous knowledge base.

Use --js for pages that render their content with JavaScript; a headless
Chrome is used when available, plain HTTP otherwise.

Use --watch to rebuild whenever one of the local files changes.`,
	Example: `  voxdesk ingest faq.md returns-policy.pdf https://help.example.com
  voxdesk ingest --js https://app.example.com/help
  voxdesk ingest --watch docs/faq.md docs/shipping.docx`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestJS, "js", false, "render web pages with a headless browser")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "rebuild when local files change")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	mode := domain.RenderStatic
	if ingestJS {
		mode = domain.RenderJavaScript
	}
	ctx, stop := interruptContext(commandContext(cmd))
	defer stop()

	cmd.Printf("Building knowledge base from %d source(s) (%s)...\n", len(args), mode)
	result, err := knowledgeService.Build(ctx, args, mode)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	printBuildResult(cmd, result)

	if !ingestWatch {
		if !result.Success {
			return errors.New(result.Message)
		}
		return nil
	}
	return watchAndRebuild(ctx, cmd, args, mode)
}

func watchAndRebuild(ctx context.Context, cmd *cobra.Command, sources []string, mode domain.RenderMode) error {
	w, err := watch.New(sources)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	cmd.Printf("Watching %d file(s) for changes (Ctrl+C to stop)...\n", len(w.Files()))
	return w.Run(ctx, func(ctx context.Context, changed []string) {
		for _, path := range changed {
			cmd.Printf("Changed: %s\n", path)
		}
		result, err := knowledgeService.Build(ctx, sources, mode)
		if err != nil {
			cmd.PrintErrf("Rebuild cancelled: %v\n", err)
			return
		}
		printBuildResult(cmd, result)
	})
}

func printBuildResult(cmd *cobra.Command, result *domain.BuildResult) {
	out := cmd.OutOrStdout()
	for _, n := range result.Notices {
		fmt.Fprintln(out, noticeColor(n.Level).Sprint(n.Message))
	}
	if result.Success {
		fmt.Fprintln(out, color.New(color.FgGreen, color.Bold).Sprint(result.Message))
		return
	}
	fmt.Fprintln(out, color.New(color.FgRed, color.Bold).Sprint(result.Message))
}

func noticeColor(level domain.NoticeLevel) *color.Color {
	switch level {
	case domain.NoticeSuccess:
		return color.New(color.FgGreen)
	case domain.NoticeWarning:
		return color.New(color.FgYellow)
	case domain.NoticeError:
		return color.New(color.FgRed)
	default:
		return color.New(color.Reset)
	}
}
