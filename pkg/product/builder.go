package product

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/catalogx/internal/logger"
	"github.com/jmylchreest/catalogx/pkg/cleaner"
	"github.com/jmylchreest/catalogx/pkg/extract"
	"github.com/jmylchreest/catalogx/pkg/selector"
)

// Builder turns detail documents into records using a selector config.
type Builder struct {
	cfg     selector.Config
	format  selector.DescriptionFormat
	cleaner cleaner.Cleaner
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithCleaner overrides the cleaner applied to markup descriptions.
func WithCleaner(c cleaner.Cleaner) BuilderOption {
	return func(b *Builder) {
		b.cleaner = c
	}
}

// NewBuilder creates a Builder for cfg.
func NewBuilder(cfg selector.Config, opts ...BuilderOption) *Builder {
	b := &Builder{
		cfg:    cfg,
		format: cfg.Format(),
	}
	b.cleaner = cleaner.ForFormat(b.format)
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build extracts one record from doc. link is recorded verbatim.
func (b *Builder) Build(doc *goquery.Document, link string) (Record, error) {
	rawSku, ok := extract.FirstText(doc, b.cfg.Sku).Text()
	if !ok {
		return Record{}, &ExtractionError{Field: "sku", Link: link, Reason: ReasonNoMatch}
	}
	if rawSku == "" {
		return Record{}, &ExtractionError{Field: "sku", Link: link, Reason: ReasonEmpty}
	}
	sku := Normalize(rawSku)
	if sku == "" {
		return Record{}, &ExtractionError{Field: "sku", Link: link, Reason: ReasonNoDigits}
	}

	nameValue := extract.FirstText(doc, b.cfg.Name)
	name, ok := nameValue.NonEmpty()
	if !ok {
		return Record{}, &ExtractionError{Field: "name", Link: link, Reason: missingReason(nameValue)}
	}

	description, err := b.description(doc)
	if err != nil {
		return Record{}, fmt.Errorf("extract description from %s: %w", link, err)
	}

	price, ok := extract.FirstText(doc, b.cfg.Price).Text()
	if !ok {
		return Record{}, &ExtractionError{Field: "price", Link: link, Reason: ReasonNoMatch}
	}

	var discounted string
	if raw, ok := extract.FirstText(doc, b.cfg.DiscountedPrice).NonEmpty(); ok {
		discounted = Normalize(raw)
	}

	rec := Record{
		Sku:             sku,
		Name:            name,
		Description:     description,
		Price:           Normalize(price),
		DiscountedPrice: discounted,
		BreadCrumbs:     extract.Breadcrumbs(doc, b.cfg.Category, b.cfg.EndingSubCategory),
		Link:            link,
	}

	logger.Debug("product built",
		"sku", rec.Sku,
		"name", rec.Name,
		"price", rec.Price,
		"discounted_price", rec.DiscountedPrice,
		"link", link)

	return rec, nil
}

func missingReason(v extract.Value) string {
	if v.Kind() == extract.Text {
		return ReasonEmpty
	}
	return ReasonNoMatch
}

// description captures the primary description, falling back to the reserve
// selector, and finally to the empty string.
func (b *Builder) description(doc *goquery.Document) (string, error) {
	for _, sel := range []selector.Selector{b.cfg.Description, b.cfg.ReserveDescription} {
		if sel.Empty() {
			continue
		}
		text, ok, err := b.captureDescription(doc, sel)
		if err != nil {
			return "", err
		}
		if ok {
			return text, nil
		}
	}
	return "", nil
}

func (b *Builder) captureDescription(doc *goquery.Document, sel selector.Selector) (string, bool, error) {
	if b.format == selector.DescriptionText {
		text, ok := extract.FirstText(doc, sel).NonEmpty()
		return text, ok, nil
	}

	v, err := extract.FirstHTML(doc, sel)
	if err != nil {
		return "", false, err
	}
	markup, ok := v.NonEmpty()
	if !ok {
		return "", false, nil
	}
	cleaned, err := b.cleaner.Clean(markup)
	if err != nil {
		return "", false, fmt.Errorf("%s cleaner: %w", b.cleaner.Name(), err)
	}
	return cleaned, cleaned != "", nil
}
