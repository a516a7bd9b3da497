package driver

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"cooklang/internal/diag"
	"cooklang/internal/metadata"
	"cooklang/internal/model"
	"cooklang/internal/parser"
	"cooklang/internal/source"
)

// Bump when the payload layout changes.
const cacheSchemaVersion uint16 = 1

// Payloads above this size are not written, a recipe this large is
// suspicious anyway.
const cacheMaxPayload uint32 = 8 << 20

// RecipeCache stores parsed recipes on disk keyed by content hash, so
// repeated checks of unchanged files skip the parse. Safe for concurrent
// use.
type RecipeCache struct {
	mu  sync.RWMutex
	dir string
}

type cachePayload struct {
	Schema     uint16
	Extensions uint16
	Name       string
	Recipe     *model.Recipe
	// Meta keeps the raw key/value pairs. The Metadata struct holds its
	// map privately, so the pairs are replayed on load.
	Meta  []metadata.Pair
	Diags []diag.Diagnostic
}

// OpenRecipeCache initializes a disk cache under the user cache directory.
func OpenRecipeCache(app string) (*RecipeCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &RecipeCache{dir: dir}, nil
}

// OpenRecipeCacheAt initializes a disk cache at an explicit directory.
func OpenRecipeCacheAt(dir string) (*RecipeCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &RecipeCache{dir: dir}, nil
}

// pathFor derives the cache file path. The key mixes the content hash with
// the extension set, the same file parses differently under different
// extensions.
func (c *RecipeCache) pathFor(digest [32]byte, ext parser.Extensions) string {
	var extKey [2]byte
	binary.LittleEndian.PutUint16(extKey[:], uint16(ext))
	name := hex.EncodeToString(digest[:]) + "-" + hex.EncodeToString(extKey[:]) + ".mp"
	return filepath.Join(c.dir, "recipes", name)
}

// Put writes a parse result to the cache. The write is atomic: encode to a
// temp file, then rename.
func (c *RecipeCache) Put(ext parser.Extensions, result *Result) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := &cachePayload{
		Schema:     cacheSchemaVersion,
		Extensions: uint16(ext),
		Name:       result.Recipe.Name,
		Recipe:     result.Recipe,
		Meta:       result.Recipe.Metadata.All(),
		Diags:      result.Bag.Items(),
	}

	p := c.pathFor(result.File.Hash, ext)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get loads a cached parse result by content hash. Returns false on a miss
// or a stale schema.
func (c *RecipeCache) Get(digest [32]byte, ext parser.Extensions) (*model.Recipe, []diag.Diagnostic, bool, error) {
	if c == nil {
		return nil, nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(digest, ext)
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, false, nil
		}
		return nil, nil, false, err
	}
	size, err := safecast.Conv[uint32](info.Size())
	if err != nil || size > cacheMaxPayload {
		return nil, nil, false, nil
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, nil, false, err
	}
	defer f.Close()

	var payload cachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, nil, false, err
	}
	if payload.Schema != cacheSchemaVersion ||
		payload.Extensions != uint16(ext) ||
		payload.Recipe == nil {
		return nil, nil, false, nil
	}

	// rebuild the metadata map from the stored pairs
	meta := metadata.New()
	for _, pair := range payload.Meta {
		meta.Insert(pair.Key, pair.Value, source.Span{}, diag.NopReporter{})
	}
	payload.Recipe.Metadata = meta

	return payload.Recipe, payload.Diags, true, nil
}

// DropAll wipes the cache, used after schema or units changes.
func (c *RecipeCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
