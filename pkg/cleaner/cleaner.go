// Package cleaner converts captured description markup into its export form.
package cleaner

import "github.com/jmylchreest/catalogx/pkg/selector"

// Cleaner transforms an HTML fragment into the format stored in a record.
type Cleaner interface {
	// Clean transforms the input fragment.
	Clean(html string) (string, error)

	// Name returns the cleaner type for logging.
	Name() string
}

// ForFormat returns the cleaner matching a description format. Text
// descriptions are never passed through a cleaner, so text maps to Noop.
func ForFormat(format selector.DescriptionFormat) Cleaner {
	if format == selector.DescriptionMarkdown {
		return NewMarkdown()
	}
	return NewNoop()
}

// NoopCleaner passes markup through unchanged.
type NoopCleaner struct{}

// NewNoop creates a new no-op cleaner.
func NewNoop() *NoopCleaner {
	return &NoopCleaner{}
}

// Clean returns the input unchanged.
func (c *NoopCleaner) Clean(html string) (string, error) {
	return html, nil
}

// Name returns the cleaner type.
func (c *NoopCleaner) Name() string {
	return "noop"
}
