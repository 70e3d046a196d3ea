package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// diskCache stores one cached response body per request URL (including
// query), keyed by a hash of the URL, together with the HTTP validators
// needed for conditional requests. It lets event listings survive flaky
// connectivity: a network error or 304 serves the last known body.
type diskCache struct {
	dir string
}

// cacheEntry holds HTTP cache metadata for a single request.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newDiskCache(dir string) *diskCache {
	return &diskCache{dir: dir}
}

func (d *diskCache) pathFor(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(d.dir, hex.EncodeToString(sum[:8]))
}

// load returns the stored validators and body for url; zero values when
// nothing is cached.
func (d *diskCache) load(url string) (cacheEntry, []byte) {
	dir := d.pathFor(url)

	var meta cacheEntry
	if data, err := os.ReadFile(filepath.Join(dir, "meta.json")); err == nil {
		if err := json.Unmarshal(data, &meta); err != nil {
			meta = cacheEntry{}
		}
	}
	body, err := os.ReadFile(filepath.Join(dir, "body.json"))
	if err != nil {
		body = nil
	}
	return meta, body
}

// save stores body and validators for url. Body is written first so meta
// never points at a missing body.
func (d *diskCache) save(url string, meta cacheEntry, body []byte) error {
	dir := d.pathFor(url)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(dir, "body.json"), body, 0o600); err != nil {
		return err
	}

	meta.URL = url
	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "meta.json"), data, 0o600)
}
