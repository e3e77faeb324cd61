// Package product builds validated product records from detail pages.
package product

import (
	"fmt"
	"regexp"
)

// Record is one extracted and normalised product. Records are values: a
// built Record is never modified, only copied.
type Record struct {
	Sku             string `json:"sku" yaml:"sku"`
	Name            string `json:"name" yaml:"name"`
	Description     string `json:"description" yaml:"description"`
	Price           string `json:"price" yaml:"price"`
	DiscountedPrice string `json:"discountedPrice" yaml:"discountedPrice"`
	BreadCrumbs     string `json:"breadCrumbs" yaml:"breadCrumbs"`
	Link            string `json:"link" yaml:"link"`
}

// Columns are the export column names, in field declaration order.
var Columns = []string{"sku", "name", "description", "price", "discountedPrice", "breadCrumbs", "link"}

// Values returns the record fields in Columns order.
func (r Record) Values() []string {
	return []string{r.Sku, r.Name, r.Description, r.Price, r.DiscountedPrice, r.BreadCrumbs, r.Link}
}

var nonNumeric = regexp.MustCompile(`[^0-9.]`)

// Normalize keeps only digits and '.', preserving their order.
func Normalize(s string) string {
	return nonNumeric.ReplaceAllString(s, "")
}

// Reasons a mandatory field could not be extracted.
const (
	ReasonNoMatch  = "no match"
	ReasonEmpty    = "matched but empty"
	ReasonNoDigits = "no digits after normalisation"
)

// ExtractionError reports a mandatory field missing from a detail page.
type ExtractionError struct {
	Field  string
	Link   string
	Reason string
}

func (e *ExtractionError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = ReasonNoMatch
	}
	return fmt.Sprintf("extract %s from %s: %s", e.Field, e.Link, reason)
}
