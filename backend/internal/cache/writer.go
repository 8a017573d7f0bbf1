package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Artifact kinds written for every tool call
const (
	KindRawData  = "raw-data"
	KindResponse = "response"
)

// timestampLayout matches an ISO-8601 UTC timestamp with milliseconds
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Sink receives artifacts for persistence. Implementations must not block
// the caller and must never report failures back to it.
type Sink interface {
	Write(context, tool, kind string, data interface{})
}

// Writer persists artifacts as pretty-printed JSON files under
// <root>/<context>/<tool>/<kind>-<timestamp>.json on background goroutines.
type Writer struct {
	root    string
	enabled bool
	logger  *zap.Logger
	now     func() time.Time
	wg      sync.WaitGroup
}

// NewWriter creates a cache writer rooted at dir. A disabled writer drops
// every artifact.
func NewWriter(dir string, enabled bool, logger *zap.Logger) *Writer {
	return &Writer{
		root:    dir,
		enabled: enabled,
		logger:  logger,
		now:     time.Now,
	}
}

// Root returns the cache directory
func (w *Writer) Root() string {
	return w.root
}

// Write schedules an artifact write and returns immediately
func (w *Writer) Write(context, tool, kind string, data interface{}) {
	if !w.enabled {
		return
	}

	timestamp := w.now().UTC()
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		path, err := w.writeFile(context, tool, kind, timestamp, data)
		if err != nil {
			w.logger.Error("Failed to cache artifact",
				zap.String("context", context),
				zap.String("tool", tool),
				zap.String("kind", kind),
				zap.Error(err),
			)
			return
		}
		w.logger.Debug("Artifact cached",
			zap.String("context", context),
			zap.String("tool", tool),
			zap.String("path", path),
		)
	}()
}

// Wait blocks until every scheduled write has finished
func (w *Writer) Wait() {
	w.wg.Wait()
}

func (w *Writer) writeFile(context, tool, kind string, timestamp time.Time, data interface{}) (string, error) {
	dir := filepath.Join(w.root, context, tool)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode artifact: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s.json", kind, timestamp.Format(timestampLayout)))
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}
