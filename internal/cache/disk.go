// Package cache stores synthesized utterance audio on disk so repeated
// readings of the same sentences skip synthesis entirely.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zstd"
)

const fileExt = ".zst"

// Disk is a size-capped, zstd-compressed blob cache. Entries are evicted
// oldest-first by modification time when the cap is exceeded.
type Disk struct {
	basePath string
	capacity int64

	mu   sync.Mutex
	size int64

	encoder *zstd.Encoder
	decoder *zstd.Decoder
	logger  *log.Logger
}

// Key derives the cache key for one utterance: the same text synthesized
// with different engine, voice, rate, or pitch is a different entry.
func Key(engine, voiceID string, rateVal, pitchVal float64, text string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|", engine, voiceID,
		strconv.FormatFloat(rateVal, 'f', 3, 64),
		strconv.FormatFloat(pitchVal, 'f', 3, 64))
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// NewDisk opens (creating if needed) a disk cache rooted at basePath with
// the given capacity in megabytes.
func NewDisk(basePath string, capacityMB int, logger *log.Logger) (*Disk, error) {
	if capacityMB <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d MB", capacityMB)
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	d := &Disk{
		basePath: basePath,
		capacity: int64(capacityMB) * 1024 * 1024,
		encoder:  encoder,
		decoder:  decoder,
		logger:   logger,
	}
	d.size = d.scan()
	d.logger.Debug("audio cache opened",
		"path", basePath, "size", humanize.Bytes(uint64(d.size)),
		"capacity", humanize.Bytes(uint64(d.capacity)))
	return d, nil
}

// Get returns the cached blob for key, if present.
func (d *Disk) Get(key string) ([]byte, bool) {
	compressed, err := os.ReadFile(d.path(key))
	if err != nil {
		return nil, false
	}
	data, err := d.decoder.DecodeAll(compressed, nil)
	if err != nil {
		// A corrupt entry is worthless; drop it.
		d.remove(key)
		return nil, false
	}
	return data, true
}

// Put stores a blob under key, evicting old entries if the cap is exceeded.
func (d *Disk) Put(key string, data []byte) error {
	compressed := d.encoder.EncodeAll(data, nil)

	path := d.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit cache entry: %w", err)
	}

	d.mu.Lock()
	d.size += int64(len(compressed))
	over := d.size > d.capacity
	d.mu.Unlock()

	if over {
		d.evict()
	}
	return nil
}

// Size returns the current on-disk size in bytes.
func (d *Disk) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.size
}

// Close releases the compressor resources.
func (d *Disk) Close() error {
	d.decoder.Close()
	return d.encoder.Close()
}

func (d *Disk) path(key string) string {
	return filepath.Join(d.basePath, key+fileExt)
}

func (d *Disk) remove(key string) {
	if info, err := os.Stat(d.path(key)); err == nil {
		if os.Remove(d.path(key)) == nil {
			d.mu.Lock()
			d.size -= info.Size()
			d.mu.Unlock()
		}
	}
}

// scan measures the existing cache contents.
func (d *Disk) scan() int64 {
	var total int64
	entries, err := os.ReadDir(d.basePath)
	if err != nil {
		return 0
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != fileExt {
			continue
		}
		if info, err := e.Info(); err == nil {
			total += info.Size()
		}
	}
	return total
}

// evict removes oldest entries until the cache fits its cap again.
func (d *Disk) evict() {
	entries, err := os.ReadDir(d.basePath)
	if err != nil {
		return
	}

	type entry struct {
		name  string
		size  int64
		mtime int64
	}
	var all []entry
	for _, e := range entries {
		if filepath.Ext(e.Name()) != fileExt {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		all = append(all, entry{e.Name(), info.Size(), info.ModTime().UnixNano()})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].mtime < all[j].mtime })

	d.mu.Lock()
	size := d.size
	d.mu.Unlock()

	var freed int64
	for _, e := range all {
		if size-freed <= d.capacity {
			break
		}
		if os.Remove(filepath.Join(d.basePath, e.name)) == nil {
			freed += e.size
		}
	}
	if freed > 0 {
		d.mu.Lock()
		d.size -= freed
		d.mu.Unlock()
		d.logger.Debug("audio cache evicted", "freed", humanize.Bytes(uint64(freed)))
	}
}
