package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/docstruct/export"
	"github.com/tsawler/docstruct/internal/config"
	"github.com/tsawler/docstruct/internal/docxtest"
	"github.com/tsawler/docstruct/internal/logging"
	"github.com/tsawler/docstruct/model"
)

func newBatch(t *testing.T, outDir string, f export.Format) (*batch, *bytes.Buffer) {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Output.Dir = outDir
	var stdout bytes.Buffer
	return &batch{
		cfg:    cfg,
		format: f,
		log:    logging.New(cfg.Logging, io.Discard),
		stdout: &stdout,
	}, &stdout
}

func writeDOCX(t *testing.T, dir, name string, b *docxtest.Builder) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path, err := b.WriteFile(dir, name)
	require.NoError(t, err)
	return path
}

func imageDocument() *docxtest.Builder {
	return docxtest.New().
		Binary("word/media/image1.png", docxtest.PNG(4, 4)).
		Rel("word/document.xml", docxtest.Rel{ID: "rId1", Type: docxtest.RelTypeImage, Target: "media/image1.png"}).
		Body(docxtest.Heading(1, "Pictures") + docxtest.Image("rId1", 40, 40))
}

func TestSingleFileToStdout(t *testing.T) {
	in := writeDOCX(t, t.TempDir(), "one.docx", docxtest.New().Body(docxtest.Paragraph("hello")))
	b, stdout := newBatch(t, "", export.FormatJSON)

	sum, err := b.run(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, summary{Parsed: 1}, sum)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &doc))
	assert.Contains(t, doc, "root")
}

func TestFolder(t *testing.T) {
	src := t.TempDir()
	writeDOCX(t, src, "a.docx", docxtest.New().Body(docxtest.Heading(1, "A")))
	writeDOCX(t, filepath.Join(src, "nested"), "b.docx", imageDocument())
	writeDOCX(t, src, "~$a.docx", docxtest.New())
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "broken.docx"), []byte("not a zip"), 0o644))

	out := t.TempDir()
	b, _ := newBatch(t, out, export.FormatHTML)
	b.cfg.Output.Media = true
	b.cfg.Batch.Workers = 2

	sum, err := b.run(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, summary{Parsed: 2, Failed: 1}, sum)

	assert.FileExists(t, filepath.Join(out, "a.html"))
	assert.FileExists(t, filepath.Join(out, "nested", "b.html"))
	assert.NoFileExists(t, filepath.Join(out, "~$a.html"))

	page, err := os.ReadFile(filepath.Join(out, "nested", "b.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), `src="b_files/images/`)

	images, err := filepath.Glob(filepath.Join(out, "nested", "b_files", "images", "*.png"))
	require.NoError(t, err)
	assert.Len(t, images, 1)
}

func TestFolderRequiresOutputDir(t *testing.T) {
	b, _ := newBatch(t, "", export.FormatJSON)
	_, err := b.run(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, errNoOutputDir)
}

func TestMissingTarget(t *testing.T) {
	b, _ := newBatch(t, "", export.FormatJSON)
	_, err := b.run(context.Background(), filepath.Join(t.TempDir(), "absent.docx"))
	assert.Error(t, err)
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.docx", "a.DOCX", "c.docm", "~$a.docx", "d.xlsx", "e.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	files, err := collect(dir)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{"a.DOCX", "b.docx", "c.docm"}, names)
}

func TestParseWithinAbandons(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	release := make(chan struct{})
	cleaned := make(chan struct{})
	parse := func() (*model.Document, error) {
		<-release
		return model.NewDocument(), nil
	}

	doc, err := parseWithin(ctx, parse, func() { close(cleaned) })
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, errAbandoned)
	assert.ErrorIs(t, err, context.Canceled)

	select {
	case <-cleaned:
		t.Fatal("cleanup ran before the parse returned")
	default:
	}

	close(release)
	select {
	case <-cleaned:
	case <-time.After(5 * time.Second):
		t.Fatal("cleanup did not run after the parse returned")
	}
}

func TestParseWithinCompletes(t *testing.T) {
	want := model.NewDocument()
	doc, err := parseWithin(context.Background(), func() (*model.Document, error) {
		return want, nil
	}, func() { t.Error("cleanup must not run for a finished parse") })

	require.NoError(t, err)
	assert.Same(t, want, doc)
}

func TestFailedFileLeavesNoMedia(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "broken.docx"), []byte("not a zip"), 0o644))
	writeDOCX(t, src, "plain.docx", docxtest.New().Body(docxtest.Paragraph("no pictures")))

	out := t.TempDir()
	b, _ := newBatch(t, out, export.FormatJSON)
	b.cfg.Output.Media = true

	sum, err := b.run(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, summary{Parsed: 1, Failed: 1}, sum)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"plain.json"}, names, "no media or staging directories remain")
}

func TestPublishReplacesEarlierMedia(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "doc_files")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "images"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "images", "old.png"), nil, 0o644))

	staging := filepath.Join(dir, ".doc_files-1")
	require.NoError(t, os.MkdirAll(filepath.Join(staging, "images"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(staging, "images", "new.png"), nil, 0o644))

	require.NoError(t, publish(staging, target))
	assert.FileExists(t, filepath.Join(target, "images", "new.png"))
	assert.NoFileExists(t, filepath.Join(target, "images", "old.png"))
	assert.NoDirExists(t, staging)
}

func TestDestination(t *testing.T) {
	b, _ := newBatch(t, "/out", export.FormatMarkdown)
	b.cfg.Output.Media = true

	dest, mediaDir := b.destination("/in", "/in/sub/report.docx")
	assert.Equal(t, filepath.Join("/out", "sub", "report.md"), dest)
	assert.Equal(t, filepath.Join("/out", "sub", "report_files"), mediaDir)

	b.cfg.Output.Dir = ""
	dest, mediaDir = b.destination("/in", "/in/report.docx")
	assert.Empty(t, dest)
	assert.Empty(t, mediaDir)
}

func TestRunFlags(t *testing.T) {
	assert.Equal(t, 2, run(nil))
	assert.Equal(t, 2, run([]string{"-format", "pdf", "x.docx"}))
	assert.Equal(t, 2, run([]string{"-unknown"}))
}

func TestRunFlagsFixInvalidEnvironment(t *testing.T) {
	t.Setenv("DOCSTRUCT_BATCH_WORKERS", "0")
	t.Setenv("DOCSTRUCT_LOG_LEVEL", "error")
	t.Setenv("DOCSTRUCT_CONFIG", "")
	in := writeDOCX(t, t.TempDir(), "one.docx", docxtest.New().Body(docxtest.Paragraph("hello")))
	out := t.TempDir()

	assert.Equal(t, 2, run([]string{"-out", out, in}), "an invalid environment is still rejected")
	assert.Equal(t, 0, run([]string{"-workers", "4", "-out", out, in}))
	assert.FileExists(t, filepath.Join(out, "one.json"))
}
