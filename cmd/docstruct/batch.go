package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/docstruct"
	"github.com/tsawler/docstruct/export"
	"github.com/tsawler/docstruct/format"
	"github.com/tsawler/docstruct/internal/config"
	"github.com/tsawler/docstruct/media"
	"github.com/tsawler/docstruct/model"
)

// errNoOutputDir is returned when a folder is given without -out.
var errNoOutputDir = errors.New("an output directory is required for folders")

type batch struct {
	cfg    *config.Config
	format export.Format
	log    *log.Logger
	stdout io.Writer
}

type summary struct {
	Parsed int
	Failed int
}

// run parses the file or every document below the folder at target.
// Failures of individual files are logged and counted; they do not stop the
// other parses.
func (b *batch) run(ctx context.Context, target string) (summary, error) {
	info, err := os.Stat(target)
	if err != nil {
		return summary{}, err
	}

	root := filepath.Dir(target)
	files := []string{target}
	if info.IsDir() {
		if b.cfg.Output.Dir == "" {
			return summary{}, errNoOutputDir
		}
		root = target
		if files, err = collect(target); err != nil {
			return summary{}, err
		}
		b.log.Info().Str("folder", target).Int("files", len(files)).Msg("found documents")
	}

	var (
		mu  sync.Mutex
		sum summary
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Batch.Workers)
	for _, file := range files {
		g.Go(func() error {
			err := b.one(ctx, root, file)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				sum.Failed++
				b.log.Error().Str("file", file).Err(err).Msg("failed")
				return nil
			}
			sum.Parsed++
			return nil
		})
	}
	g.Wait()

	b.log.Info().Int("parsed", sum.Parsed).Int("failed", sum.Failed).Msg("done")
	return sum, nil
}

// collect returns the word-processing documents below dir in lexical
// order, skipping editor lock files.
func collect(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || format.IsTemporary(p) || format.Detect(p) != format.DOCX {
			return nil
		}
		files = append(files, p)
		return nil
	})
	return files, err
}

// one parses a single file within the per-file budget and writes the
// result.
func (b *batch) one(ctx context.Context, root, file string) error {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout())
	defer cancel()

	dest, mediaDir := b.destination(root, file)
	extractor := docstruct.Open(file).WithOptions(b.cfg.Options())

	// Media is staged in a scratch directory and only moved into place when
	// the whole file succeeds.
	var staging string
	if mediaDir != "" {
		if err := os.MkdirAll(filepath.Dir(mediaDir), 0o755); err != nil {
			return err
		}
		var err error
		staging, err = os.MkdirTemp(filepath.Dir(mediaDir), "."+filepath.Base(mediaDir)+"-")
		if err != nil {
			return err
		}
		extractor = extractor.WithMediaSink(prefixSink{
			Sink:   media.DirStore{Dir: staging},
			prefix: filepath.Base(mediaDir),
		})
	}
	discard := func() {
		if staging != "" {
			os.RemoveAll(staging)
		}
	}

	start := time.Now()
	doc, err := parseWithin(ctx, extractor.Parse, discard)
	if err != nil {
		if !errors.Is(err, errAbandoned) {
			discard()
		}
		return err
	}
	for _, d := range doc.Diagnostics {
		b.log.Debug().Str("file", file).Str("component", d.Component).Msg(d.Message)
	}
	b.log.Info().
		Str("file", file).
		Int("blocks", doc.Stats.Blocks).
		Int("tables", doc.Stats.Tables).
		Int("images", doc.Stats.Images).
		Int("diagnostics", len(doc.Diagnostics)).
		Str("size", humanize.Bytes(uint64(doc.Metadata.ByteSize))).
		Dur("elapsed", time.Since(start)).
		Msg("parsed")

	if dest == "" {
		return export.Render(doc, b.format, b.stdout)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		discard()
		return err
	}
	if err := export.RenderToFile(doc, b.format, dest); err != nil {
		discard()
		return err
	}
	return publish(staging, mediaDir)
}

// publish moves staged media to dir, replacing an earlier run's media. An
// empty staging directory is removed instead.
func publish(staging, dir string) error {
	if staging == "" {
		return nil
	}
	entries, err := os.ReadDir(staging)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return os.Remove(staging)
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.Rename(staging, dir)
}

// destination maps an input file to its output path, mirroring the folder
// layout below root, and to the directory its media goes in. Both are empty
// when output goes to standard output.
func (b *batch) destination(root, file string) (dest, mediaDir string) {
	if b.cfg.Output.Dir == "" {
		return "", ""
	}
	rel, err := filepath.Rel(root, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(file)
	}
	stem := strings.TrimSuffix(rel, filepath.Ext(rel))
	dest = filepath.Join(b.cfg.Output.Dir, stem+b.format.FileExtension())
	if b.cfg.Output.Media {
		mediaDir = filepath.Join(b.cfg.Output.Dir, stem+"_files")
	}
	return dest, mediaDir
}

// errAbandoned is wrapped by parseWithin when ctx ends before the parse.
var errAbandoned = errors.New("parse abandoned")

// parseWithin runs parse and gives up when ctx ends first. The parse itself
// takes no context, so an abandoned parse finishes in the background;
// cleanup then runs once it has returned.
func parseWithin(ctx context.Context, parse func() (*model.Document, error), cleanup func()) (*model.Document, error) {
	type result struct {
		doc *model.Document
		err error
	}
	done := make(chan result, 1)
	go func() {
		doc, err := parse()
		done <- result{doc, err}
	}()

	select {
	case r := <-done:
		return r.doc, r.err
	case <-ctx.Done():
		go func() {
			<-done
			if cleanup != nil {
				cleanup()
			}
		}()
		return nil, fmt.Errorf("%w: %w", errAbandoned, ctx.Err())
	}
}

// prefixSink makes the handles of a media sink relative to the output
// file rather than to the sink's own directory.
type prefixSink struct {
	media.Sink
	prefix string
}

func (s prefixSink) Put(id, kind string, data []byte) (string, error) {
	ref, err := s.Sink.Put(id, kind, data)
	if err != nil {
		return "", err
	}
	return path.Join(s.prefix, ref), nil
}
