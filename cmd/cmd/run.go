package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ideaforge/internal/config"
	"ideaforge/internal/core"
	"ideaforge/internal/logger"
	"ideaforge/internal/pipeline"
	"ideaforge/internal/trends"
)

// newRunCmd creates the run command: a one-shot trip through the whole
// pipeline without the server, useful for cron-driven digests.
func newRunCmd() *cobra.Command {
	var (
		sendEmail    bool
		customPrompt string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline once and generate one idea",
		Long: `Collect trends, match the first page against the knowledge base, pick the
most relevant match, and generate a video idea for it.

Examples:
  # Generate one idea and print it
  ideaforge run

  # Generate and email the report
  ideaforge run --email`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), sendEmail, customPrompt)
		},
	}

	cmd.Flags().BoolVar(&sendEmail, "email", false, "Email the generated idea report")
	cmd.Flags().StringVar(&customPrompt, "prompt", "", "Custom generation instructions (replaces the default template)")

	return cmd
}

func runOnce(ctx context.Context, sendEmail bool, customPrompt string) error {
	log := logger.Get()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	deps, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	if deps.Pipeline == nil {
		return fmt.Errorf("a Gemini API key is required to run the pipeline")
	}

	items := trends.Collect(ctx, deps.Trends...)
	deps.Session.SetTrends(items)
	log.Info("Collected trends", "count", len(items))

	page, _, err := deps.Session.NextTrendPage()
	if err != nil {
		return err
	}

	matches, err := deps.Pipeline.Match(ctx, page, deps.Titans)
	if err != nil {
		return fmt.Errorf("matching failed: %w", err)
	}
	deps.Session.AddMatches(matches)

	active, err := deps.Session.ActiveMatches()
	if err != nil {
		return err
	}
	if len(active) == 0 {
		return fmt.Errorf("every match in this batch has already been used")
	}

	best := active[0]
	log.Info("Generating idea", "titan", best.Titan.Name, "trend", best.Trend.Keyword)

	idea, err := pipeline.WithDeadline(ctx, cfg.AI.Gemini.GenerateTimeoutDuration(), func(ctx context.Context) (core.VideoIdea, error) {
		return deps.LLM.GenerateIdea(ctx, best, customPrompt)
	})
	if err != nil {
		return fmt.Errorf("idea generation failed: %w", err)
	}
	if err := deps.Session.RecordIdea(idea); err != nil {
		return err
	}

	fmt.Printf("\n%s x %s (%s)\n", idea.TitanName, idea.Trend, idea.Methodology)
	for i, title := range idea.Titles {
		fmt.Printf("  %d. %s\n", i+1, title)
	}
	fmt.Printf("  Thumbnail: %s\n", idea.ThumbnailText)
	fmt.Printf("  Hook: %s\n", idea.HookingPhrase)
	fmt.Printf("  Tool (level %d): %s\n", idea.ToolConcept.Level, idea.ToolConcept.Name)

	if sendEmail {
		if err := deps.Mailer.SendIdeaReport(idea); err != nil {
			return fmt.Errorf("report email failed: %w", err)
		}
		log.Info("Report emailed", "recipient", cfg.Email.Recipient)
	}
	return nil
}
