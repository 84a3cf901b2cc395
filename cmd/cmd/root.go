/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ideaforge/internal/config"
	"ideaforge/internal/email"
	"ideaforge/internal/llm"
	"ideaforge/internal/logger"
	"ideaforge/internal/news"
	"ideaforge/internal/papers"
	"ideaforge/internal/pipeline"
	"ideaforge/internal/server"
	"ideaforge/internal/session"
	"ideaforge/internal/store"
	"ideaforge/internal/titandb"
	"ideaforge/internal/trends"
	"ideaforge/internal/youtube"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ideaforge",
	Short: "Ideaforge turns live trends into evidence-backed content ideas.",
	Long: `Ideaforge collects trend keywords from Naver DataLab and Google daily
trends, matches them against a knowledge base of methodology experts using
Gemini, enriches each match with academic papers or news, and generates
ready-to-shoot video ideas with companion tool concepts.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ideaforge.yaml)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newTrendsCmd())
	rootCmd.AddCommand(newRunCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}

// buildDeps wires the application graph from configuration. A missing Gemini
// key leaves LLM and Pipeline nil; the server degrades the affected routes.
func buildDeps(cfg *config.Config) (server.Deps, error) {
	log := logger.Get()

	titans, err := titandb.Load()
	if err != nil {
		return server.Deps{}, fmt.Errorf("failed to load titan knowledge base: %w", err)
	}

	var history session.HistoryStore
	var consumption session.ConsumptionStore
	if sqlStore, err := store.NewStore(cfg.Store.DataDir); err != nil {
		log.Warn("SQLite store unavailable, using in-memory state", "error", err)
		mem := store.NewMemoryStore()
		history, consumption = mem, mem
	} else {
		history, consumption = sqlStore, sqlStore
	}

	sess := session.NewManager(history, consumption, cfg.Pipeline.PageSize, cfg.History.MaxEntries)

	paperClient := papers.NewClient(cfg.Pipeline.PaperQueryDelayDuration())
	newsClient := news.NewClient(cfg.Providers.Naver.ClientID, cfg.Providers.Naver.ClientSecret)

	deps := server.Deps{
		Papers:  paperClient,
		Session: sess,
		Trends: []trends.Provider{
			trends.NewNaverProvider(cfg.Providers.Naver.ClientID, cfg.Providers.Naver.ClientSecret),
			trends.NewGoogleProvider("KR"),
		},
		YouTube: youtube.NewClient(cfg.Providers.YouTube.APIKey),
		Mailer: email.NewSender(email.Config{
			SMTPHost:    cfg.Email.SMTPHost,
			SMTPPort:    cfg.Email.SMTPPort,
			Username:    cfg.Email.Username,
			AppPassword: cfg.Email.AppPassword,
			Recipient:   cfg.Email.Recipient,
			FromName:    cfg.Email.FromName,
		}),
		Titans: titans,
	}

	llmClient, err := llm.NewClient(cfg.AI.Gemini.Model)
	if err != nil {
		if !errors.Is(err, llm.ErrNotConfigured) {
			return server.Deps{}, err
		}
		log.Warn("Gemini API key not set; matching and generation are disabled")
		return deps, nil
	}

	deps.LLM = llmClient
	deps.GenerateTimeout = cfg.AI.Gemini.GenerateTimeoutDuration()
	deps.Pipeline = pipeline.New(llmClient, paperClient, newsClient, pipeline.Options{
		MatchTimeout: cfg.AI.Gemini.MatchTimeoutDuration(),
		PaperTimeout: cfg.Pipeline.PaperTimeoutDuration(),
		NewsTimeout:  cfg.Pipeline.NewsTimeoutDuration(),
	})
	return deps, nil
}

// newServeCmd creates the serve command for starting the HTTP server
func newServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard HTTP server",
		Long: `Start the ideaforge API server.

The server provides:
  • Trend collection and paged trend/expert matching
  • Idea generation with optional email delivery
  • Habit-video search, analysis, and suggestions

Examples:
  # Start server on default port 8080
  ideaforge serve

  # Start on custom port
  ideaforge serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, host)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8080)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 0.0.0.0)")

	return cmd
}

func runServe(ctx context.Context, port int, host string) error {
	log := logger.Get()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	serverCfg := cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	deps, err := buildDeps(cfg)
	if err != nil {
		return err
	}

	srv := server.New(serverCfg, deps)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("Server listening on http://%s:%d", serverCfg.Host, serverCfg.Port))
		log.Info("Press Ctrl+C to stop")
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed, forcing close", "error", err)
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		log.Info("Server stopped successfully")
	}

	return nil
}
