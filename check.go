package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/dom"
	"github.com/Zachkp/portfolio/internal/loader"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/models"
	"github.com/Zachkp/portfolio/internal/page"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the page skeleton and data documents",
		Long: `Verifies the page skeleton contains every element the page needs and
reports what the biography and project documents provide. Missing data is
reported but is not an error; the affected section renders empty.`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	out := cmd.OutOrStdout()
	if _, err := loadSkeleton(cfg); err != nil {
		fmt.Fprintf(out, "skeleton: FAIL %v\n", err)
		return err
	}
	fmt.Fprintln(out, "skeleton: ok")

	fetcher, err := newLoader(cfg, logger.WithOptions(zap.IncreaseLevel(zap.ErrorLevel)))
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if bio, ok := loader.Fetch[models.Biography](ctx, fetcher, cfg.AboutMeSource); ok {
		fmt.Fprintf(out, "about me: ok (%d characters, headshot %t)\n", len([]rune(bio.AboutMe)), bio.Headshot != "")
	} else {
		fmt.Fprintf(out, "about me: unavailable at %s, section will be empty\n", cfg.AboutMeSource)
	}

	if projects, ok := loader.Fetch[[]models.Project](ctx, fetcher, cfg.ProjectsSource); ok && len(*projects) > 0 {
		fmt.Fprintf(out, "projects: ok (%d)\n", len(*projects))
	} else {
		fmt.Fprintf(out, "projects: unavailable at %s, section will be empty\n", cfg.ProjectsSource)
	}
	return nil
}

func checkSkeleton(skeleton []byte) error {
	doc, err := dom.Parse(bytes.NewReader(skeleton))
	if err != nil {
		return err
	}
	return page.CheckContract(doc)
}
