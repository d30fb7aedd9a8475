// Package cli implements the pdfs command line.
package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dimdasci/pdfs-api/config"
	"github.com/dimdasci/pdfs-api/internal/logging"
	"github.com/dimdasci/pdfs-api/internal/sniff"
)

// version is set at build time with -ldflags.
var version = "dev"

var (
	configPath string
	verbose    bool
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "pdfs",
	Short: "Analyse the visual structure of PDF pages",
	Long: `pdfs breaks PDF pages into painted objects, groups them into
z-ordered layers, renders each layer and flags zero-area objects and
patterns repeated across pages.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json (overrides the config)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// settings loads the config and builds the logger the global flags ask for.
// Logs go to the command's error stream.
func settings(cmd *cobra.Command) (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

// readPDF reads path and refuses files that are plainly something else
func readPDF(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if kind := sniff.Detect(data); kind != sniff.PDF && kind != sniff.Unknown {
		return nil, fmt.Errorf("%s is a %s file, not a PDF", path, kind)
	}
	return data, nil
}
