package commands

import (
	"fmt"
	"strconv"
	"strings"
)

// maxPageRange bounds a single a-b range so a typo cannot queue millions of
// requests.
const maxPageRange = 10000

// parsePages parses a page list such as "1-3,5" into page indices in the
// order given. Pages are 1-based; repeats are dropped.
func parsePages(list string) ([]int, error) {
	var pages []int
	seen := make(map[int]bool)
	add := func(n int) {
		if !seen[n] {
			seen[n] = true
			pages = append(pages, n)
		}
	}

	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(part, "-")
		first, err := parsePage(lo)
		if err != nil {
			return nil, err
		}
		if !isRange {
			add(first)
			continue
		}

		last, err := parsePage(hi)
		if err != nil {
			return nil, err
		}
		if last < first {
			return nil, fmt.Errorf("invalid page range %q: end before start", part)
		}
		if last-first >= maxPageRange {
			return nil, fmt.Errorf("invalid page range %q: more than %d pages", part, maxPageRange)
		}
		for n := first; n <= last; n++ {
			add(n)
		}
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages in %q", list)
	}
	return pages, nil
}

func parsePage(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid page %q", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("invalid page %d: pages start at 1", n)
	}
	return n, nil
}
