// Package artifactcache keeps compressed snapshots of data files,
// keyed by content, so an artifact about to be regenerated can be
// recovered if the new production turns out wrong.
package artifactcache

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"

	"github.com/databill86/dvc/internal/logging"
)

const snapshotExt = ".zst"

// Cache stores zstd-compressed snapshots under a cache directory,
// sharded by the first byte of the content key.
type Cache struct {
	dir    string
	logger *logging.Logger
}

// New creates a cache rooted at dir.
func New(dir string, logger *logging.Logger) *Cache {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Cache{dir: dir, logger: logger}
}

// Snapshot compresses the file at path into the cache and returns its
// content key. Snapshotting an already-cached content is a no-op.
func (c *Cache) Snapshot(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %q for snapshot: %w", path, err)
	}

	sum := blake2b.Sum256(data)
	key := hex.EncodeToString(sum[:])

	dest := c.snapshotPath(key)
	if _, err := os.Stat(dest); err == nil {
		c.logger.Debug("snapshot already cached", map[string]interface{}{"key": key})
		return key, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}

	tmp := dest + ".tmp"
	if err := c.writeCompressed(tmp, data); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("placing snapshot: %w", err)
	}

	c.logger.Debug("snapshotted artifact", map[string]interface{}{
		"path": path,
		"key":  key,
	})
	return key, nil
}

// Has reports whether a snapshot with the given content key exists.
func (c *Cache) Has(key string) bool {
	_, err := os.Stat(c.snapshotPath(key))
	return err == nil
}

// Restore decompresses the snapshot with the given key to dest.
func (c *Cache) Restore(key string, dest string) error {
	src, err := os.Open(c.snapshotPath(key))
	if err != nil {
		return fmt.Errorf("opening snapshot %s: %w", key, err)
	}
	defer func() { _ = src.Close() }()

	reader, err := zstd.NewReader(src)
	if err != nil {
		return fmt.Errorf("decompressing snapshot %s: %w", key, err)
	}
	defer reader.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating directory for %q: %w", dest, err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %q: %w", dest, err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, reader); err != nil {
		return fmt.Errorf("restoring snapshot %s: %w", key, err)
	}
	return nil
}

func (c *Cache) snapshotPath(key string) string {
	if len(key) < 2 {
		return filepath.Join(c.dir, key+snapshotExt)
	}
	return filepath.Join(c.dir, key[:2], key[2:]+snapshotExt)
}

func (c *Cache) writeCompressed(path string, data []byte) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}

	writer, err := zstd.NewWriter(out)
	if err != nil {
		_ = out.Close()
		return fmt.Errorf("starting compression: %w", err)
	}

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		_ = out.Close()
		return fmt.Errorf("compressing snapshot: %w", err)
	}
	if err := writer.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("finishing compression: %w", err)
	}
	return out.Close()
}
