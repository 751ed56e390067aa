package cds

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
)

// Holder classes are deterministic for a given VM build: the same
// resolution batch and the same dump seed always produce the same
// bytes. A dump can therefore cache the generated classes in a sidecar
// file and skip regeneration when the seed still matches.

// cborEncMode uses canonical options for deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cds: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// HolderCache is the persisted form of one generation run.
type HolderCache struct {
	Seed    int64            `cbor:"seed"`
	Lines   []string         `cbor:"lines"`
	Classes []GeneratedClass `cbor:"classes"`
}

// Matches reports whether the cache was produced from the same seed and
// the same resolution batch, in the same order.
func (c *HolderCache) Matches(seed int64, lines []string) bool {
	if c.Seed != seed || len(c.Lines) != len(lines) {
		return false
	}
	for i, s := range lines {
		if c.Lines[i] != s {
			return false
		}
	}
	return true
}

// MarshalHolderCache serializes a HolderCache to CBOR bytes.
func MarshalHolderCache(c *HolderCache) ([]byte, error) {
	return cborEncMode.Marshal(c)
}

// UnmarshalHolderCache deserializes a HolderCache from CBOR bytes.
func UnmarshalHolderCache(data []byte) (*HolderCache, error) {
	var c HolderCache
	if err := cbor.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("cds: unmarshal holder cache: %w", err)
	}
	return &c, nil
}

// WriteHolderCache writes the cache to path, replacing any previous
// content.
func WriteHolderCache(path string, c *HolderCache) error {
	data, err := MarshalHolderCache(c)
	if err != nil {
		return fmt.Errorf("cds: marshal holder cache: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cds: write holder cache: %w", err)
	}
	return nil
}

// ReadHolderCache loads a cache file written by WriteHolderCache.
func ReadHolderCache(path string) (*HolderCache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cds: read holder cache: %w", err)
	}
	return UnmarshalHolderCache(data)
}
