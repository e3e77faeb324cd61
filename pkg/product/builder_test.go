package product

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/catalogx/pkg/extract"
	"github.com/jmylchreest/catalogx/pkg/selector"
)

func loadDoc(t *testing.T, filename string) *goquery.Document {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", filename))
	if err != nil {
		t.Fatalf("failed to read testdata %s: %v", filename, err)
	}
	doc, err := extract.Parse(data, "text/html; charset=utf-8")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func testConfig() selector.Config {
	return selector.Config{
		BaseURL:            "https://shop.example.com/catalog",
		Category:           ".breadcrumbs li",
		EndingSubCategory:  ".crumb-current",
		ProductLink:        "a.product",
		Sku:                ".sku",
		Name:               ".name",
		Description:        ".description",
		ReserveDescription: ".short",
		Price:              ".price",
		DiscountedPrice:    ".sale",
	}
}

// --- Normalize Tests ---

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"$1,234.56", "1234.56"},
		{"  € 999.00 ", "999.00"},
		{"SKU: TR-2041.5", "2041.5"},
		{"no digits", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, in := range []string{"$1,234.56", "7731", "SKU 20.41-B", "1.2.3"} {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

// --- Builder Tests ---

func TestBuilder_Build_Complete(t *testing.T) {
	doc := loadDoc(t, "complete.html")
	b := NewBuilder(testConfig())

	rec, err := b.Build(doc, "https://shop.example.com/p/trail-runner-2")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := Record{
		Sku:             "2041.5",
		Name:            "Trail Runner 2",
		Description:     "Lightweight trail shoe.",
		Price:           "1234.56",
		DiscountedPrice: "999.00",
		BreadCrumbs:     "Home|Shoes|Running",
		Link:            "https://shop.example.com/p/trail-runner-2",
	}
	if rec != want {
		t.Errorf("Build() = %+v\nwant %+v", rec, want)
	}
}

func TestBuilder_Build_MissingSku(t *testing.T) {
	doc := loadDoc(t, "complete.html")
	cfg := testConfig()
	cfg.Sku = ".no-such-sku"

	_, err := NewBuilder(cfg).Build(doc, "/p/1")

	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected *ExtractionError, got %v", err)
	}
	if extErr.Field != "sku" {
		t.Errorf("Field = %q, want sku", extErr.Field)
	}
	if extErr.Link != "/p/1" {
		t.Errorf("Link = %q, want /p/1", extErr.Link)
	}
	if extErr.Reason != ReasonNoMatch {
		t.Errorf("Reason = %q, want %q", extErr.Reason, ReasonNoMatch)
	}
}

func TestBuilder_Build_SkuWithoutDigits(t *testing.T) {
	doc := loadDoc(t, "complete.html")
	cfg := testConfig()
	cfg.Sku = ".crumb-current"

	_, err := NewBuilder(cfg).Build(doc, "/p/1")

	var extErr *ExtractionError
	if !errors.As(err, &extErr) || extErr.Field != "sku" {
		t.Fatalf("expected sku ExtractionError, got %v", err)
	}
	if extErr.Reason != ReasonNoDigits {
		t.Errorf("Reason = %q, want %q", extErr.Reason, ReasonNoDigits)
	}
	if !strings.Contains(err.Error(), ReasonNoDigits) {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestBuilder_Build_EmptyName(t *testing.T) {
	doc, err := extract.ParseString(`<span class="sku">A-1</span><h1 class="name"></h1><span class="price">1</span>`)
	if err != nil {
		t.Fatal(err)
	}
	cfg := testConfig()
	cfg.Sku, cfg.Name, cfg.Price = ".sku", ".name", ".price"

	_, err = NewBuilder(cfg).Build(doc, "/p/1")

	var extErr *ExtractionError
	if !errors.As(err, &extErr) || extErr.Field != "name" {
		t.Fatalf("expected name ExtractionError, got %v", err)
	}
	if extErr.Reason != ReasonEmpty {
		t.Errorf("Reason = %q, want %q", extErr.Reason, ReasonEmpty)
	}
}

func TestBuilder_Build_MissingName(t *testing.T) {
	doc := loadDoc(t, "complete.html")
	cfg := testConfig()
	cfg.Name = selector.None

	_, err := NewBuilder(cfg).Build(doc, "/p/1")

	var extErr *ExtractionError
	if !errors.As(err, &extErr) || extErr.Field != "name" {
		t.Fatalf("expected name ExtractionError, got %v", err)
	}
}

func TestBuilder_Build_MissingPrice(t *testing.T) {
	doc := loadDoc(t, "complete.html")
	cfg := testConfig()
	cfg.Price = ".no-price"

	_, err := NewBuilder(cfg).Build(doc, "/p/1")

	var extErr *ExtractionError
	if !errors.As(err, &extErr) || extErr.Field != "price" {
		t.Fatalf("expected price ExtractionError, got %v", err)
	}
}

func TestBuilder_Build_OptionalFieldsDefaultEmpty(t *testing.T) {
	doc := loadDoc(t, "minimal.html")
	cfg := testConfig()
	cfg.ReserveDescription = selector.None

	rec, err := NewBuilder(cfg).Build(doc, "/p/tee")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if rec.Sku != "7731" {
		t.Errorf("Sku = %q, want 7731", rec.Sku)
	}
	if rec.Price != "19.90" {
		t.Errorf("Price = %q, want 19.90", rec.Price)
	}
	if rec.DiscountedPrice != "" {
		t.Errorf("DiscountedPrice = %q, want empty", rec.DiscountedPrice)
	}
	if rec.Description != "" {
		t.Errorf("Description = %q, want empty for non-text node", rec.Description)
	}
	if rec.BreadCrumbs != "" {
		t.Errorf("BreadCrumbs = %q, want empty", rec.BreadCrumbs)
	}
}

func TestBuilder_Build_ReserveDescription(t *testing.T) {
	doc := loadDoc(t, "minimal.html")

	rec, err := NewBuilder(testConfig()).Build(doc, "/p/tee")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if rec.Description != "Cotton tee." {
		t.Errorf("Description = %q, want reserve description", rec.Description)
	}
}

func TestBuilder_Build_DescriptionAsHTML(t *testing.T) {
	doc := loadDoc(t, "complete.html")
	cfg := testConfig()
	cfg.DescriptionAsHTML = true

	rec, err := NewBuilder(cfg).Build(doc, "/p/1")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if rec.Description != "<p>Lightweight <strong>trail</strong> shoe.</p>" {
		t.Errorf("Description = %q, want inner markup", rec.Description)
	}
}

func TestBuilder_Build_DescriptionMarkdown(t *testing.T) {
	doc := loadDoc(t, "complete.html")
	cfg := testConfig()
	cfg.DescriptionFormat = selector.DescriptionMarkdown

	rec, err := NewBuilder(cfg).Build(doc, "/p/1")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !strings.Contains(rec.Description, "**trail**") {
		t.Errorf("Description = %q, want markdown", rec.Description)
	}
}

type failingCleaner struct{}

func (failingCleaner) Clean(string) (string, error) { return "", errors.New("boom") }
func (failingCleaner) Name() string                 { return "failing" }

func TestBuilder_Build_CleanerError(t *testing.T) {
	doc := loadDoc(t, "complete.html")
	cfg := testConfig()
	cfg.DescriptionAsHTML = true

	_, err := NewBuilder(cfg, WithCleaner(failingCleaner{})).Build(doc, "/p/1")
	if err == nil || !strings.Contains(err.Error(), "failing cleaner") {
		t.Fatalf("expected cleaner error, got %v", err)
	}
}

// --- Record Tests ---

func TestRecord_ValuesMatchColumns(t *testing.T) {
	rec := Record{Sku: "1", Name: "n", Description: "d", Price: "2", DiscountedPrice: "3", BreadCrumbs: "a|b", Link: "/p"}

	values := rec.Values()
	if len(values) != len(Columns) {
		t.Fatalf("Values() has %d entries, Columns has %d", len(values), len(Columns))
	}
	if values[0] != "1" || values[5] != "a|b" || values[6] != "/p" {
		t.Errorf("unexpected Values() order: %v", values)
	}
}
