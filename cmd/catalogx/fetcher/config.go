// Package fetcher provides the headless browser fetcher used by the CLI for
// catalogs that render their listings client side.
package fetcher

import (
	"time"

	"github.com/jmylchreest/catalogx/pkg/fetcher"
)

// Config holds configuration for the dynamic fetcher.
type Config struct {
	UserAgent  string
	Timeout    time.Duration
	ChromePath string // empty means search the usual install locations
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent: fetcher.DefaultUserAgent,
		Timeout:   30 * time.Second,
	}
}
