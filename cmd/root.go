package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/openwebmedia/rolldeps/application"
	"github.com/openwebmedia/rolldeps/config"
)

var (
	// Global flags
	configPath         string
	revision           string
	thirdPartyRevision string
	dryRun             bool
	verbose            bool
	skipCommitQueue    bool
	commitQueueOver    int
)

var rootCmd = &cobra.Command{
	Use:   "rolldeps [manifest]",
	Short: "Roll DEPS-manifest dependency pins to a newer reference state",
	Long: `A CLI tool that compares a local DEPS manifest against a remote reference
manifest, computes the minimal set of changed dependency pins, and produces
an updated manifest plus a deterministic commit message.

Shared dependencies roll to the reference revision; dependencies local to
the manifest roll to the HEAD of their own repository; configured skip
paths are left alone.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manifestPath := "DEPS"
		if len(args) > 0 {
			manifestPath = args[0]
		}
		return runRoll(cmd, manifestPath)
	},
}

// Execute runs the CLI.
func Execute() error {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to config file (default: auto-detect)")
	rootCmd.Flags().StringVarP(&revision, "revision", "r", "",
		"Reference revision to roll to (defaults to the reference HEAD)")
	rootCmd.Flags().StringVar(&thirdPartyRevision, "third-party-revision", "",
		"Third-party revision to roll to (defaults to that repository's HEAD)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Calculate changes and print the commit message without touching the manifest")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")
	rootCmd.Flags().BoolVar(&skipCommitQueue, "skip-cq", false,
		"Skip sending the roll to the commit queue")
	rootCmd.Flags().IntVar(&commitQueueOver, "cq-over", 1,
		"Commit queue dry run if the commit-position distance is below this number")
}

func runRoll(cmd *cobra.Command, manifestPath string) error {
	if verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	manifestText, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("failed to read manifest %q: %w", manifestPath, err)
	}

	service, err := injectRollService(cfg)
	if err != nil {
		return err
	}

	result, err := service.Roll(cmd.Context(), string(manifestText), application.RollOptions{
		Revision:           revision,
		ThirdPartyRevision: thirdPartyRevision,
		LocalClangScript:   readLocalClangScript(cfg, manifestPath),
		SkipCommitQueue:    skipCommitQueue,
		CommitQueueOver:    commitQueueOver,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.CommitMessage)

	if len(result.Changes) == 0 {
		logger.Info("No dependency changes detected.")
	}
	if dryRun {
		logger.Info("Dry run: leaving the manifest untouched.")
		return nil
	}

	if writeErr := os.WriteFile(manifestPath, []byte(result.UpdatedManifest), 0o644); writeErr != nil {
		return fmt.Errorf("failed to write manifest %q: %w", manifestPath, writeErr)
	}
	logger.Infof("Updated %s.", manifestPath)
	return nil
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		found, err := config.FindConfigFile()
		if err != nil {
			logger.Debug("No config file found, using the default roll policy")
			return config.Default(), nil
		}
		path = found
	}
	logger.Debugf("Loading config from %s", path)
	return config.Load(path)
}

// readLocalClangScript loads the local Clang update script relative to the
// manifest's directory. A missing script disables Clang tracking.
func readLocalClangScript(cfg *config.Config, manifestPath string) string {
	if cfg.ClangScriptPath == "" {
		return ""
	}
	scriptPath := filepath.Join(filepath.Dir(manifestPath), filepath.FromSlash(cfg.ClangScriptPath))
	content, err := os.ReadFile(scriptPath)
	if err != nil {
		logger.Debugf("No local Clang update script at %s, skipping Clang tracking", scriptPath)
		return ""
	}
	return string(content)
}
