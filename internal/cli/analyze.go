package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	pdfs "github.com/dimdasci/pdfs-api"
	"github.com/dimdasci/pdfs-api/model"
	"github.com/dimdasci/pdfs-api/rasterstore"
	"github.com/dimdasci/pdfs-api/viewer"
)

var (
	analyzeOut  string
	analyzePage int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyse a PDF and write bundles, rasters and a viewer",
	Long: `Analyses every page of a PDF, or a single page with --page.
Writes <out>/<doc>/bundles.json, the page and layer rasters under
<out>/<doc>/pages/ and an HTML viewer at <out>/<doc>.html.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "out", "output directory")
	analyzeCmd.Flags().IntVarP(&analyzePage, "page", "p", 0, "analyse only this 1-based page")
	rootCmd.AddCommand(analyzeCmd)
}

// documentID names a document after its file
func documentID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, log, err := settings(cmd)
	if err != nil {
		return err
	}
	data, err := readPDF(args[0])
	if err != nil {
		return err
	}
	docID := documentID(args[0])

	p, err := pdfs.New(cfg,
		pdfs.WithLogger(log),
		pdfs.WithStore(rasterstore.NewDir(analyzeOut, cfg.Format())))
	if err != nil {
		return err
	}

	// runErr is a failed page or a cancelled run. Whatever was analysed is
	// still written before it is returned.
	var runErr error
	var out any
	var bundles []*model.PageBundle
	if analyzePage > 0 {
		b, err := p.ProcessPage(cmd.Context(), docID, data, analyzePage-1)
		if b == nil {
			return err
		}
		out, bundles, runErr = b, []*model.PageBundle{b}, err
	} else {
		res, err := p.ProcessDocument(cmd.Context(), docID, data)
		if res == nil {
			return err
		}
		out, bundles, runErr = res, res.Pages, err
	}

	dir := filepath.Join(analyzeOut, docID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	js, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal bundles: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bundles.json"), js, 0o644); err != nil {
		return err
	}

	html, err := os.Create(filepath.Join(analyzeOut, docID+".html"))
	if err != nil {
		return err
	}
	werr := viewer.Write(html, bundles, viewer.WithScale(cfg.RenderScale))
	if err := errors.Join(werr, html.Close()); err != nil {
		return fmt.Errorf("failed to write viewer: %w", err)
	}

	printSummary(cmd, bundles)
	cmd.Printf("Wrote %s and %s\n", filepath.Join(dir, "bundles.json"), html.Name())
	return runErr
}

func printSummary(cmd *cobra.Command, bundles []*model.PageBundle) {
	for _, b := range bundles {
		if b.Failed() {
			cmd.Printf("page %d: %s: %s\n", b.Page, b.ErrorKind, b.Error)
			continue
		}
		cmd.Printf("page %d: %d objects, %d layers, %d findings, %d warnings\n",
			b.Page, len(b.Objects), len(b.Layers), len(b.Findings), len(b.Warnings))
	}
}
