package renderer

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/nikogura/portfolio/pkg/dom"
	"github.com/pkg/errors"
)

// WritePage serializes page to outputPath, creating the directory as needed.
func WritePage(page *dom.Document, outputPath string) (err error) {
	var buf bytes.Buffer
	err = page.Render(&buf)
	if err != nil {
		return err
	}

	err = WriteFile(buf.Bytes(), outputPath)
	return err
}

// WriteFile writes content to outputPath, creating the directory as needed.
func WriteFile(content []byte, outputPath string) (err error) {
	outputDir := filepath.Dir(outputPath)
	err = os.MkdirAll(outputDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outputDir)
		return err
	}

	err = os.WriteFile(outputPath, content, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write file: %s", outputPath)
		return err
	}

	return err
}

// ValidateFiles checks that required input files exist.
func ValidateFiles(paths ...string) (err error) {
	for _, path := range paths {
		_, err = os.Stat(path)
		if os.IsNotExist(err) {
			err = errors.Errorf("file not found: %s", path)
			return err
		}
		if err != nil {
			err = errors.Wrapf(err, "failed to stat file: %s", path)
			return err
		}
	}
	return err
}
