package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ideaforge/internal/config"
	"ideaforge/internal/trends"
)

// newTrendsCmd creates the trends command for a one-off collection run
func newTrendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trends",
		Short: "Collect current trends and print them",
		Long: `Collect trend keywords from Naver DataLab and Google daily trends and
print them sorted by score. Missing provider credentials fall back to demo
data, so the command always produces output.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			items := trends.Collect(cmd.Context(),
				trends.NewNaverProvider(cfg.Providers.Naver.ClientID, cfg.Providers.Naver.ClientSecret),
				trends.NewGoogleProvider("KR"),
			)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SCORE\tSOURCE\tCATEGORY\tKEYWORD")
			for _, item := range items {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", item.Score, item.Source, item.Category, item.Keyword)
			}
			return w.Flush()
		},
	}
}
