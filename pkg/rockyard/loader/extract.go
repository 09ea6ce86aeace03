package loader

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// extractInPlace extracts a manifest archive into its containing
// directory and returns the path of the extracted manifest (the archive
// name without its suffix). Any stale previous extraction is removed
// first. On failure both the archive and any partial output are removed
// so the next load starts clean.
func extractInPlace(archivePath string) (string, error) {
	dir := filepath.Dir(archivePath)
	outPath := strings.TrimSuffix(archivePath, ".zip")

	if err := os.RemoveAll(outPath); err != nil {
		return "", &Error{Code: CodeExtractFailed, Msg: fmt.Sprintf("failed extracting %s", archivePath), Err: err}
	}

	if err := unzip(archivePath, dir); err != nil {
		_ = os.Remove(archivePath)
		_ = os.RemoveAll(outPath)
		return "", &Error{Code: CodeExtractFailed, Msg: fmt.Sprintf("failed extracting %s", archivePath), Err: err}
	}

	if !fileExists(outPath) {
		_ = os.Remove(archivePath)
		return "", &Error{Code: CodeExtractFailed, Msg: fmt.Sprintf("%s did not contain %s", archivePath, filepath.Base(outPath))}
	}

	return outPath, nil
}

// unzip extracts every entry of the archive into destDir, refusing
// entries that would escape it.
func unzip(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		target := filepath.Join(destDir, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(filepath.Separator)) {
			return fmt.Errorf("archive entry %q escapes destination", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}

	return nil
}

func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}
