package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"feedscraper/pkg/config"
	"feedscraper/pkg/errors"
	"feedscraper/pkg/logger"
)

// Manager writes run results into an output directory
type Manager struct {
	outputDir string
	format    string
	logger    logger.Logger
	now       func() time.Time

	mu    sync.Mutex
	saved int
}

// NewManager creates a new storage manager. The directory is created on
// first use; the format is checked on every Save.
func NewManager(outputDir, format string, log logger.Logger) *Manager {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Manager{
		outputDir: outputDir,
		format:    format,
		logger:    log,
		now:       time.Now,
	}
}

// DefaultFilename returns "tweets-<timestamp>" with ':' replaced so the
// name is valid on every filesystem
func DefaultFilename(t time.Time) string {
	stamp := t.UTC().Format("2006-01-02T15:04:05.000Z")
	return "tweets-" + strings.ReplaceAll(stamp, ":", "-")
}

// EnsureDir creates the output directory if it doesn't exist
func (m *Manager) EnsureDir() error {
	if err := os.MkdirAll(m.outputDir, 0755); err != nil {
		return errors.Wrap(errors.ErrorTypePersistence, err, "failed to create output directory")
	}
	return nil
}

// Save writes result to <dir>/<filename>.<format> and returns the path.
// An empty filename selects DefaultFilename. Existing files are replaced.
func (m *Manager) Save(result any, filename string) (string, error) {
	if !config.IsSupportedFormat(m.format) {
		return "", errors.New(errors.ErrorTypeConfig, "unsupported output format: %s", m.format)
	}
	if filename == "" {
		filename = DefaultFilename(m.now())
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypePersistence, err, "failed to encode results")
	}

	if err := m.EnsureDir(); err != nil {
		return "", err
	}

	outputPath := filepath.Join(m.outputDir, fmt.Sprintf("%s.%s", filename, m.format))
	if err := writeAtomic(outputPath, data); err != nil {
		m.logger.WithError(err).Error("Failed to save results")
		return "", err
	}

	m.mu.Lock()
	m.saved++
	m.mu.Unlock()

	m.logger.InfoWithFields("Results saved", map[string]interface{}{
		"path":  outputPath,
		"bytes": len(data),
	})
	return outputPath, nil
}

// writeAtomic writes data to a temporary file and renames it into place
func writeAtomic(path string, data []byte) error {
	tempFile := path + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return errors.Wrap(errors.ErrorTypePersistence, err, "failed to create temporary file")
	}

	_, err = out.Write(data)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return errors.Wrap(errors.ErrorTypePersistence, err, "failed to write results")
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return errors.Wrap(errors.ErrorTypePersistence, closeErr, "failed to close file")
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return errors.Wrap(errors.ErrorTypePersistence, err, "failed to rename temporary file")
	}
	return nil
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// GetSavedCount returns the number of files written by this manager
func (m *Manager) GetSavedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved
}
