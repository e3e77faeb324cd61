package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/catalogx/pkg/selector"
)

// BreadcrumbSeparator joins category path segments.
const BreadcrumbSeparator = "|"

// Breadcrumbs builds the category path of a product page: the text of every
// category match in document order, followed by the first ending match when
// ending is set and yields text. Matches with no text at all (an icon-only
// home link) are left out; other segments are kept verbatim.
func Breadcrumbs(doc *goquery.Document, category, ending selector.Selector) string {
	var segments []string
	for _, s := range AllText(doc, category) {
		if s != "" {
			segments = append(segments, s)
		}
	}

	if !ending.Empty() {
		if last, ok := FirstText(doc, ending).NonEmpty(); ok {
			segments = append(segments, last)
		}
	}

	return strings.Join(segments, BreadcrumbSeparator)
}
