package evmrs

import (
	"os"
	"strconv"

	"github.com/evmrs/evmrs/cache"
)

// ConfigFromEnv builds a Config from environment variables, falling back to
// the package defaults on any missing or malformed value.
func ConfigFromEnv(rev Revision) Config {
	return Config{
		Revision:          rev,
		AnalysisCacheSize: envInt("EVMRS_CODE_ANALYSIS_CACHE_SIZE", cache.DefaultAnalysisCacheSize),
		HashCacheSize:     envInt("EVMRS_HASH_CACHE_SIZE", cache.DefaultHashCacheSize),
		MaxCallDepth:      envInt("EVMRS_MAX_CALL_DEPTH", defaultMaxCallDepth),
	}
}

func envInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
