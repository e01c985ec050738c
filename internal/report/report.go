// Package report writes the per-status model lists of a caching run.
package report

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/subgraphdumper/internal/ctxlog"
	"github.com/specialistvlad/subgraphdumper/internal/orchestrator"
)

// FileName returns the list file name used for status s.
func FileName(s orchestrator.ModelCacheStatus) string {
	return s.String() + ".lst"
}

// Write creates <dir>/<status>.lst for every non-empty bucket of statuses,
// one model per line, and logs the size of every bucket.
func Write(ctx context.Context, dir string, statuses orchestrator.StatusMap) error {
	logger := ctxlog.FromContext(ctx)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory %s: %w", dir, err)
	}

	for _, s := range orchestrator.Statuses() {
		models := statuses[s]
		logger.Info("Model caching status.", "status", s.String(), "count", len(models))
		if len(models) == 0 {
			continue
		}
		path := filepath.Join(dir, FileName(s))
		if err := writeList(path, models); err != nil {
			return err
		}
		logger.Debug("Status list written.", "path", path)
	}
	return nil
}

func writeList(path string, lines []string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
