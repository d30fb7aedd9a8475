package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimdasci/pdfs-api/config"
	"github.com/dimdasci/pdfs-api/internal/testpdf"
	"github.com/dimdasci/pdfs-api/model"
)

// execute runs the root command with args and returns everything written
// to its output and error streams.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		configPath, verbose, logFormat = "", false, ""
		analyzeOut, analyzePage = "out", 0
		renderPage, renderOut = 1, ""
		inspectJSON = false
	}()
	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

// samplePDF writes a two-page document with a repeated title
func samplePDF(t *testing.T) string {
	t.Helper()
	data := testpdf.Pages(
		"BT /F1 10 Tf 72 760 Td (Title) Tj ET 1 0 0 rg 72 100 300 200 re f",
		"BT /F1 10 Tf 72 760 Td (Title) Tj ET 0 1 0 rg 72 100 300 320 re f",
	)
	path := filepath.Join(t.TempDir(), "sample.pdf")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := execute(t, "version")
	assert.NoError(t, err)
	assert.Contains(t, out, "pdfs version test-version-1.0.0")
}

func TestRootCmd_GlobalFlags(t *testing.T) {
	for _, name := range []string{"config", "verbose", "log-format"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestAnalyzeCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execute(t, "analyze")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAnalyzeCmd_WritesOutputs(t *testing.T) {
	pdf := samplePDF(t)
	out := t.TempDir()

	stdout, err := execute(t, "analyze", pdf, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "page 1: 2 objects, 2 layers, 1 findings")
	assert.Contains(t, stdout, "document loaded")

	data, err := os.ReadFile(filepath.Join(out, "sample", "bundles.json"))
	require.NoError(t, err)
	var res struct {
		DocumentID string              `json:"document_id"`
		Pages      []*model.PageBundle `json:"pages"`
		Findings   []model.Finding     `json:"findings"`
	}
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, "sample", res.DocumentID)
	require.Len(t, res.Pages, 2)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, model.RegionHeader, res.Findings[0].Region)

	for _, rel := range []string{
		"sample.html",
		"sample/pages/p001/page.png",
		"sample/pages/p001/outline.png",
		"sample/pages/p002/l001.png",
	} {
		_, err := os.Stat(filepath.Join(out, filepath.FromSlash(rel)))
		assert.NoError(t, err, rel)
	}
	html, err := os.ReadFile(filepath.Join(out, "sample.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), `src="sample/pages/p001/page.png"`)
}

func TestAnalyzeCmd_SinglePage(t *testing.T) {
	pdf := samplePDF(t)
	out := t.TempDir()

	stdout, err := execute(t, "analyze", pdf, "--out", out, "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "page 2:")
	assert.NotContains(t, stdout, "page 1:")

	data, err := os.ReadFile(filepath.Join(out, "sample", "bundles.json"))
	require.NoError(t, err)
	var b model.PageBundle
	require.NoError(t, json.Unmarshal(data, &b))
	assert.Equal(t, 2, b.Page)
}

func TestAnalyzeCmd_CancelledWritesPartialOutput(t *testing.T) {
	pdf := samplePDF(t)
	out := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stdout, err := executeContext(t, ctx, "analyze", pdf, "--out", out)
	require.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, stdout, "page 1: PageDecodeError")

	data, err := os.ReadFile(filepath.Join(out, "sample", "bundles.json"))
	require.NoError(t, err)
	var res struct {
		Pages []*model.PageBundle `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(data, &res))
	require.Len(t, res.Pages, 2)
	for _, b := range res.Pages {
		assert.Equal(t, model.StatusFailed, b.Status)
	}
	_, err = os.Stat(filepath.Join(out, "sample.html"))
	assert.NoError(t, err)
}

func TestAnalyzeCmd_Config(t *testing.T) {
	pdf := samplePDF(t)
	out := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "pdfs.toml")
	cfg := config.Default()
	cfg.RasterFormat = "tiff"
	cfg.LogFormat = "json"
	require.NoError(t, config.Save(cfgPath, cfg))

	stdout, err := execute(t, "analyze", pdf, "--out", out, "--config", cfgPath, "--verbose")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"level":"debug"`)
	_, err = os.Stat(filepath.Join(out, "sample", "pages", "p001", "page.tiff"))
	assert.NoError(t, err)
}

func TestAnalyzeCmd_RejectsEncrypted(t *testing.T) {
	b := testpdf.New()
	enc := b.Add("<< /Filter /Standard /V 2 /R 3 /Length 128 /O (x) /U (y) /P -4 >>")
	b.TrailerExtra = fmt.Sprintf("/Encrypt %d 0 R", enc)
	path := filepath.Join(t.TempDir(), "locked.pdf")
	require.NoError(t, os.WriteFile(path, testpdf.DocumentWith(b, testpdf.Page{}), 0o644))

	_, err := execute(t, "analyze", path, "--out", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Encrypted")
}

func TestRenderCmd(t *testing.T) {
	pdf := samplePDF(t)
	target := filepath.Join(t.TempDir(), "p2.png")

	stdout, err := execute(t, "render", pdf, "--page", "2", "--out", target)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Rendered page 2 (2 objects)")
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "PNG", string(data[1:4]))

	_, err = execute(t, "render", pdf, "--page", "3", "--out", target)
	assert.Error(t, err)
	_, err = execute(t, "render", pdf, "--out", filepath.Join(t.TempDir(), "p.gif"))
	assert.Error(t, err)
}

func TestRenderCmd_OutRequired(t *testing.T) {
	flag := renderCmd.Flags().Lookup("out")
	require.NotNil(t, flag)
	assert.Contains(t, flag.Annotations, "cobra_annotation_bash_completion_one_required_flag")
}

func TestInspectCmd(t *testing.T) {
	pdf := samplePDF(t)

	stdout, err := execute(t, "inspect", pdf)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Pages:    2")
	assert.Contains(t, stdout, "page 1: 612 x 792 pt, rotation 0")

	stdout, err = execute(t, "inspect", pdf, "--json")
	require.NoError(t, err)
	var info inspection
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.Equal(t, 2, info.PageCount)
	assert.Len(t, info.Pages, 2)
}

func TestInspectCmd_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "picture.pdf")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n0000"), 0o644))

	_, err := execute(t, "inspect", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a PNG file, not a PDF")
}
