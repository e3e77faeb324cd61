// Package selector holds the immutable field-to-selector configuration that
// drives catalog extraction.
package selector

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/go-playground/validator/v10"
)

// DefaultSection is the configuration section holding parser settings.
const DefaultSection = "ParserSettings"

// Selector is a CSS selector expression. The zero value is None.
type Selector string

// None is the explicit "no selector configured" value.
const None Selector = ""

// Empty reports whether no selector was configured.
func (s Selector) Empty() bool { return strings.TrimSpace(string(s)) == "" }

// String returns the selector expression.
func (s Selector) String() string { return string(s) }

// DescriptionFormat controls how the product description is captured.
type DescriptionFormat string

const (
	DescriptionText     DescriptionFormat = "text"
	DescriptionHTML     DescriptionFormat = "html"
	DescriptionMarkdown DescriptionFormat = "markdown"
)

// Config maps logical product fields to selectors.
type Config struct {
	BaseURL string `validate:"required,url"`

	Category          Selector `validate:"selector"`
	EndingSubCategory Selector `validate:"selector"`

	ProductLink Selector `validate:"selector"`

	Sku                Selector `validate:"selector"`
	Name               Selector `validate:"selector"`
	Description        Selector `validate:"selector"`
	ReserveDescription Selector `validate:"selector"`
	DescriptionAsHTML  bool
	DescriptionFormat  DescriptionFormat `validate:"omitempty,oneof=text html markdown"`

	Price           Selector `validate:"selector"`
	DiscountedPrice Selector `validate:"selector"`
}

// Source is a key-value configuration source. *viper.Viper satisfies it.
type Source interface {
	GetString(key string) string
	GetBool(key string) bool
}

// Configuration keys, relative to the section.
const (
	KeyBaseURL            = "BaseURL"
	KeyCategory           = "CategoryElement"
	KeyEndingSubCategory  = "EndingSubCategoryElement"
	KeyProductLink        = "ProductLinkElement"
	KeySku                = "SkuElement"
	KeyName               = "ProductNameElement"
	KeyDescription        = "ProductDescriptionElement"
	KeyReserveDescription = "ReserveProductDescriptionElement"
	KeyDescriptionAsHTML  = "DescriptionAsHtml"
	KeyDescriptionFormat  = "DescriptionFormat"
	KeyPrice              = "PriceElement"
	KeyDiscountedPrice    = "DiscountedPriceElement"
)

// fieldKeys maps Config fields to the configuration keys they are read from.
var fieldKeys = map[string]string{
	"BaseURL":            KeyBaseURL,
	"Category":           KeyCategory,
	"EndingSubCategory":  KeyEndingSubCategory,
	"ProductLink":        KeyProductLink,
	"Sku":                KeySku,
	"Name":               KeyName,
	"Description":        KeyDescription,
	"ReserveDescription": KeyReserveDescription,
	"DescriptionAsHTML":  KeyDescriptionAsHTML,
	"DescriptionFormat":  KeyDescriptionFormat,
	"Price":              KeyPrice,
	"DiscountedPrice":    KeyDiscountedPrice,
}

// ConfigError reports missing or invalid configuration. Field is the
// configuration key, e.g. SkuElement.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Load reads the selector configuration from section of src and validates it.
func Load(src Source, section string) (Config, error) {
	if section == "" {
		section = DefaultSection
	}
	key := func(name string) string { return section + "." + name }
	sel := func(name string) Selector { return Selector(strings.TrimSpace(src.GetString(key(name)))) }

	cfg := Config{
		BaseURL:            strings.TrimSpace(src.GetString(key(KeyBaseURL))),
		Category:           sel(KeyCategory),
		EndingSubCategory:  sel(KeyEndingSubCategory),
		ProductLink:        sel(KeyProductLink),
		Sku:                sel(KeySku),
		Name:               sel(KeyName),
		Description:        sel(KeyDescription),
		ReserveDescription: sel(KeyReserveDescription),
		DescriptionAsHTML:  src.GetBool(key(KeyDescriptionAsHTML)),
		DescriptionFormat:  DescriptionFormat(strings.ToLower(strings.TrimSpace(src.GetString(key(KeyDescriptionFormat))))),
		Price:              sel(KeyPrice),
		DiscountedPrice:    sel(KeyDiscountedPrice),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required fields and selector syntax.
func (c Config) Validate() error {
	err := newValidator().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ConfigError{Field: "config", Reason: err.Error()}
	}

	fe := verrs[0]
	field, ok := fieldKeys[fe.Field()]
	if !ok {
		field = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return &ConfigError{Field: field, Reason: "is required"}
	case "url":
		return &ConfigError{Field: field, Reason: fmt.Sprintf("%q is not a valid URL", fe.Value())}
	case "selector":
		_, cerr := cascadia.Compile(fmt.Sprint(fe.Value()))
		return &ConfigError{Field: field, Reason: fmt.Sprintf("invalid selector: %v", cerr)}
	default:
		return &ConfigError{Field: field, Reason: fmt.Sprintf("failed %q validation", fe.Tag())}
	}
}

// Format returns the effective description format.
func (c Config) Format() DescriptionFormat {
	if c.DescriptionFormat != "" {
		return c.DescriptionFormat
	}
	if c.DescriptionAsHTML {
		return DescriptionHTML
	}
	return DescriptionText
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("selector", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		if s == "" {
			return true
		}
		_, err := cascadia.Compile(s)
		return err == nil
	})
	return v
}
