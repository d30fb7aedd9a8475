package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dimdasci/pdfs-api/classify"
	"github.com/dimdasci/pdfs-api/interpreter"
	"github.com/dimdasci/pdfs-api/reader"
	"github.com/dimdasci/pdfs-api/render"
)

var (
	renderPage int
	renderOut  string
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render one page to an image",
	Long:  `Renders the full raster of one page. The format follows the extension of --out (png or tiff).`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().IntVarP(&renderPage, "page", "p", 1, "1-based page to render")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "output image file")
	_ = renderCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, log, err := settings(cmd)
	if err != nil {
		return err
	}
	format, err := render.ParseFormat(strings.TrimPrefix(filepath.Ext(renderOut), "."))
	if err != nil {
		return err
	}
	data, err := readPDF(args[0])
	if err != nil {
		return err
	}
	doc, err := reader.Load(data, reader.WithMaxPages(cfg.MaxPages), reader.WithStrictValidation(cfg.StrictValidation))
	if err != nil {
		return err
	}
	defer doc.Close()

	if renderPage < 1 || renderPage > doc.PageCount() {
		return fmt.Errorf("page %d out of range 1-%d", renderPage, doc.PageCount())
	}
	page, err := doc.Page(renderPage - 1)
	if err != nil {
		return err
	}
	objects, warnings, err := classify.FromSequence(renderPage, interpreter.New(doc, page).Events())
	if err != nil {
		return err
	}
	for _, w := range warnings {
		log.WithField("operator", w.Operator).Warn(w.Message)
	}

	img, err := render.New(doc, render.WithScale(cfg.RenderScale)).RenderPage(cmd.Context(), page.CropBox, objects)
	if err != nil {
		return err
	}
	f, err := os.Create(renderOut)
	if err != nil {
		return err
	}
	if err := errors.Join(render.Encode(f, img, format), f.Close()); err != nil {
		return fmt.Errorf("failed to write %s: %w", renderOut, err)
	}
	cmd.Printf("Rendered page %d (%d objects) to %s\n", renderPage, len(objects), renderOut)
	return nil
}
