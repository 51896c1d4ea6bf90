// Package cache provides the two process-wide LRU caches the interpreter
// consults: one keyed by code hash for CodeAnalysis results, one keyed by
// 32- or 64-byte input for Keccak-256 digests. Grounded on the original's
// hash_cache.rs (32/64-byte-only short-circuit) and code_analysis.rs's
// cache-by-code-hash pattern, implemented with hashicorp/golang-lru/v2
// instead of the original's bespoke sharded cache (see DESIGN.md).
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultAnalysisCacheSize = 8192
	DefaultHashCacheSize     = 1024
)

// AnalysisCache maps a low-64-bit code-hash key to an arbitrary cached
// analysis value (the interpreter package supplies the concrete type via
// the any parameter to avoid an import cycle with its own CodeAnalysis).
type AnalysisCache struct {
	lru *lru.Cache[uint64, any]
}

func NewAnalysisCache(size int) *AnalysisCache {
	if size <= 0 {
		size = DefaultAnalysisCacheSize
	}
	c, _ := lru.New[uint64, any](size)
	return &AnalysisCache{lru: c}
}

func (c *AnalysisCache) Get(key uint64) (any, bool) {
	return c.lru.Get(key)
}

func (c *AnalysisCache) Put(key uint64, value any) {
	c.lru.Add(key, value)
}

// HashCache maps a data digest-input key (already reduced to a fixed-size
// array by the caller, who only consults this cache for 32- or 64-byte
// inputs) to its Keccak-256 digest.
type HashCache struct {
	cache32 *lru.Cache[[32]byte, [32]byte]
	cache64 *lru.Cache[[64]byte, [32]byte]
}

func NewHashCache(size int) *HashCache {
	if size <= 0 {
		size = DefaultHashCacheSize
	}
	c32, _ := lru.New[[32]byte, [32]byte](size)
	c64, _ := lru.New[[64]byte, [32]byte](size)
	return &HashCache{cache32: c32, cache64: c64}
}

func (h *HashCache) Get32(key [32]byte) ([32]byte, bool) {
	return h.cache32.Get(key)
}

func (h *HashCache) Put32(key, digest [32]byte) {
	h.cache32.Add(key, digest)
}

func (h *HashCache) Get64(key [64]byte) ([32]byte, bool) {
	return h.cache64.Get(key)
}

func (h *HashCache) Put64(key [64]byte, digest [32]byte) {
	h.cache64.Add(key, digest)
}
