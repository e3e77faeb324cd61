package catalog

import (
	"fmt"
	"net/url"
	"strconv"
)

// ListingURL returns base with its page query parameter set to page. Any
// other query parameters on base are kept.
func ListingURL(base string, page int) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("listing url: %w", err)
	}

	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// ResolveLinks makes each href absolute against the listing URL it was found
// on. Order and duplicates are preserved.
func ResolveLinks(listingURL string, hrefs []string) ([]string, error) {
	base, err := url.Parse(listingURL)
	if err != nil {
		return nil, fmt.Errorf("resolve links: %w", err)
	}

	links := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		linkURL, err := url.Parse(href)
		if err != nil {
			return nil, fmt.Errorf("resolve link %q: %w", href, err)
		}
		if !linkURL.IsAbs() {
			linkURL = base.ResolveReference(linkURL)
		}
		links = append(links, linkURL.String())
	}
	return links, nil
}
