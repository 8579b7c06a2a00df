package output

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"git.home.luguber.info/inful/docnotion/internal/logfields"
)

// Confirm asks whether an existing file may be overwritten.
type Confirm func(path string) (bool, error)

// AlwaysOverwrite is the Confirm used with --yes.
func AlwaysOverwrite(string) (bool, error) { return true, nil }

// MoveResult reports what MoveCustomPages did.
type MoveResult struct {
	Moved   []string
	Skipped []string
}

// MoveCustomPages moves every file staged in stagingDir to destDir, keeping
// relative paths, and removes stagingDir afterwards. Existing destinations are
// replaced only when confirm agrees; declined files stay staged.
func MoveCustomPages(stagingDir, destDir string, confirm Confirm, logger *slog.Logger) (MoveResult, error) {
	var res MoveResult
	if logger == nil {
		logger = slog.Default()
	}
	if confirm == nil {
		confirm = AlwaysOverwrite
	}
	if _, err := os.Stat(stagingDir); errors.Is(err, fs.ErrNotExist) {
		return res, nil
	}

	var staged []string
	err := filepath.WalkDir(stagingDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			staged = append(staged, p)
		}
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("scan custom pages in %s: %w", stagingDir, err)
	}
	slices.Sort(staged)

	for _, src := range staged {
		rel, err := filepath.Rel(stagingDir, src)
		if err != nil {
			return res, err
		}
		dst := filepath.Join(destDir, rel)
		if _, err := os.Stat(dst); err == nil {
			ok, err := confirm(dst)
			if err != nil {
				return res, err
			}
			if !ok {
				logger.Warn("Keeping existing custom page", logfields.Path(dst))
				res.Skipped = append(res.Skipped, dst)
				continue
			}
		}
		if err := os.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
			return res, fmt.Errorf("create directory for %s: %w", dst, err)
		}
		if err := move(src, dst); err != nil {
			return res, err
		}
		logger.Info("Moved custom page", logfields.Path(dst))
		res.Moved = append(res.Moved, dst)
	}

	if len(res.Skipped) == 0 {
		if err := os.RemoveAll(stagingDir); err != nil {
			return res, fmt.Errorf("remove staging directory %s: %w", stagingDir, err)
		}
	}
	return res, nil
}

// move renames src to dst, copying when they are on different devices.
func move(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	// #nosec G304 - src is a staged file found by WalkDir
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	if err := (FS{}).WriteFile(dst, data); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove %s: %w", src, err)
	}
	return nil
}
