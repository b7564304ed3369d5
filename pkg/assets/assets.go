// Package assets copies static site files next to the rendered page and
// generates derived assets such as the contact QR code.
package assets

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrent file copies.
const DefaultWorkers = 8

// Match expands patterns relative to srcDir. Results are unique, sorted and
// slash separated.
func Match(srcDir string, patterns []string) (files []string, err error) {
	info, err := os.Stat(srcDir)
	if err != nil {
		err = errors.Wrapf(err, "failed to access asset root: %s", srcDir)
		return files, err
	}

	if !info.IsDir() {
		err = errors.Errorf("asset root is not a directory: %s", srcDir)
		return files, err
	}

	fsys := os.DirFS(srcDir)
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		var matches []string
		matches, err = doublestar.Glob(fsys, filepath.ToSlash(pattern), doublestar.WithFilesOnly())
		if err != nil {
			err = errors.Wrapf(err, "bad asset pattern %q", pattern)
			return files, err
		}

		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	sort.Strings(files)
	return files, err
}

// Copy copies every file matching patterns from srcDir into dstDir, keeping
// relative paths. At most workers copies run at once.
func Copy(ctx context.Context, srcDir, dstDir string, patterns []string, workers int) (copied []string, err error) {
	var files []string
	files, err = Match(srcDir, patterns)
	if err != nil {
		return copied, err
	}

	if workers <= 0 {
		workers = DefaultWorkers
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, rel := range files {
		rel := rel
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			src := filepath.Join(srcDir, filepath.FromSlash(rel))
			dst := filepath.Join(dstDir, filepath.FromSlash(rel))
			return copyFile(src, dst)
		})
	}

	err = g.Wait()
	if err != nil {
		return copied, err
	}

	copied = files
	return copied, err
}

func copyFile(src, dst string) (err error) {
	err = os.MkdirAll(filepath.Dir(dst), 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create directory for %s", dst)
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		err = errors.Wrapf(err, "failed to open %s", src)
		return err
	}
	defer in.Close()

	//nolint:gosec // Published site files are world readable
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		err = errors.Wrapf(err, "failed to create %s", dst)
		return err
	}

	_, err = io.Copy(out, in)
	if err != nil {
		_ = out.Close()
		err = errors.Wrapf(err, "failed to copy %s", src)
		return err
	}

	err = out.Close()
	if err != nil {
		err = errors.Wrapf(err, "failed to close %s", dst)
		return err
	}

	return err
}
