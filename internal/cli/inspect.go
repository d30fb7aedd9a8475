package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dimdasci/pdfs-api/model"
	"github.com/dimdasci/pdfs-api/reader"
)

var inspectJSON bool

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Show document metadata and page sizes",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(inspectCmd)
}

type pageInfo struct {
	Page     int        `json:"page"`
	Label    string     `json:"label,omitempty"`
	MediaBox model.Rect `json:"mediabox"`
	CropBox  model.Rect `json:"cropbox"`
	Rotation int        `json:"rotation"`
}

type inspection struct {
	reader.Metadata
	Pages []pageInfo `json:"pages"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, _, err := settings(cmd)
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

	info := inspection{Metadata: doc.Metadata()}
	for i := 0; i < doc.PageCount(); i++ {
		page, err := doc.Page(i)
		if err != nil {
			return err
		}
		pi := pageInfo{Page: i + 1, MediaBox: page.MediaBox, CropBox: page.CropBox, Rotation: page.Rotate}
		if i < len(info.PageLabels) {
			pi.Label = info.PageLabels[i]
		}
		info.Pages = append(info.Pages, pi)
	}

	if inspectJSON {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Version:  %s\n", info.Version)
	cmd.Printf("Pages:    %d\n", info.PageCount)
	cmd.Printf("Tagged:   %t\n", info.Tagged)
	if info.Repaired {
		cmd.Println("Repaired: cross-reference table was rebuilt")
	}
	keys := make([]string, 0, len(info.Info))
	for k := range info.Info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Printf("%-9s %s\n", k+":", info.Info[k])
	}
	cmd.Println()
	for _, p := range info.Pages {
		label := ""
		if p.Label != "" {
			label = fmt.Sprintf(" [%s]", p.Label)
		}
		cmd.Printf("page %d%s: %.0f x %.0f pt, rotation %d\n", p.Page, label, p.CropBox.Width(), p.CropBox.Height(), p.Rotation)
	}
	return nil
}
