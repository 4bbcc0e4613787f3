// Package extract converts trees of XNB files into GLB scenes, PNG images
// and JSON sidecars.
package extract

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/mogaika/xnbtool/config"
	"github.com/mogaika/xnbtool/xnb"
	"github.com/mogaika/xnbtool/xnb/content"
)

var ErrDestinationExists = errors.New("destination already exists")

// FileError is the failure of a single input file.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Summary counts inputs by outcome. Exists counts inputs refused because an
// output was already there, they are not part of Failed.
type Summary struct {
	Processed int
	Succeeded int
	Failed    int
	Exists    int
	Skipped   int
}

func (s Summary) String() string {
	return fmt.Sprintf("processed %d, succeeded %d, failed %d, exists %d, skipped %d",
		s.Processed, s.Succeeded, s.Failed, s.Exists, s.Skipped)
}

// Extractor runs the conversion of every XNB file below an input path.
type Extractor struct {
	cfg *config.Config
	log *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{cfg: cfg, log: log}
}

// Run extracts in, a single file or a directory tree, into out. Files are
// processed one at a time; a failing file never stops the run, its error is
// collected into the returned multierr. Cancelling ctx stops the walk before
// the next file.
func (e *Extractor) Run(ctx context.Context, in, out string) (Summary, error) {
	var summary Summary

	info, err := os.Stat(in)
	if err != nil {
		return summary, errors.Wrapf(err, "Failed to stat input %q", in)
	}
	if err := os.MkdirAll(out, 0777); err != nil {
		return summary, errors.Wrapf(err, "Failed to create output directory %q", out)
	}

	var errs error
	if info.IsDir() {
		errs = e.walk(ctx, in, out, &summary)
	} else {
		errs = e.file(in, filepath.Join(out, filepath.Base(in)), &summary)
	}

	e.log.Info("Extraction finished",
		zap.Int("processed", summary.Processed),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("exists", summary.Exists),
		zap.Int("skipped", summary.Skipped))
	return summary, errs
}

func (e *Extractor) walk(ctx context.Context, in, out string, summary *Summary) error {
	var errs error
	walkErr := filepath.WalkDir(in, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			e.log.Warn("Failed to read entry", zap.String("path", path), zap.Error(err))
			errs = multierr.Append(errs, &FileError{Path: path, Err: err})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".xnb") {
			return nil
		}

		rel, err := filepath.Rel(in, path)
		if err != nil {
			return err
		}
		errs = multierr.Append(errs, e.file(path, filepath.Join(out, rel), summary))
		return nil
	})
	return multierr.Append(errs, walkErr)
}

// file processes one input and accounts for it in summary. dst is the output
// path with the input's extension still attached.
func (e *Extractor) file(src, dst string, summary *Summary) error {
	summary.Processed++
	log := e.log.With(zap.String("path", src))

	written, err := e.extractFile(src, strings.TrimSuffix(dst, filepath.Ext(dst)), log)
	switch {
	case errors.Is(err, ErrDestinationExists):
		summary.Exists++
		log.Warn("Output exists", zap.Error(err))
		return &FileError{Path: src, Err: err}
	case err != nil:
		summary.Failed++
		log.Error("Failed to extract", zap.String("cause", fmt.Sprintf("%+v", err)))
		return &FileError{Path: src, Err: err}
	case len(written) == 0:
		summary.Skipped++
		log.Debug("Nothing to export")
		return nil
	}
	summary.Succeeded++
	log.Info("Extracted", zap.Strings("outputs", written))
	return nil
}

func (e *Extractor) extractFile(src, base string, log *zap.Logger) ([]string, error) {
	if !e.cfg.Overwrite {
		exts := outputExtensions
		if e.cfg.Debug {
			exts = append(exts[:len(exts):len(exts)], dumpExtension)
		}
		for _, ext := range exts {
			if _, err := os.Stat(base + ext); err == nil {
				return nil, errors.Wrap(ErrDestinationExists, base+ext)
			}
		}
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return nil, err
	}
	c, err := xnb.Decode(data)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read container")
	}
	log.Debug("Container", zap.Stringer("platform", c.Platform), zap.Stringer("compression", c.Compression),
		zap.Int("size", len(c.Data)))

	g, err := content.Decode(c.Data)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to decode content")
	}

	out, err := e.outputs(g, base, log)
	if err != nil {
		return nil, err
	}

	if e.cfg.Debug {
		out = append(out, dumpOutput(base, c, g))
	}

	if err := os.MkdirAll(filepath.Dir(base), 0777); err != nil {
		return nil, err
	}
	written := make([]string, 0, len(out))
	for _, o := range out {
		if err := writeAtomic(o.path, o.data); err != nil {
			for _, path := range written {
				os.Remove(path)
			}
			return nil, errors.Wrapf(err, "Failed to write %q", o.path)
		}
		written = append(written, o.path)
	}
	return written, nil
}
