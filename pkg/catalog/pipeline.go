// Package catalog walks a paginated product catalog: each listing page yields
// product links, each link yields a record, and each page's records are
// exported together.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/catalogx/internal/logger"
	"github.com/jmylchreest/catalogx/pkg/extract"
	"github.com/jmylchreest/catalogx/pkg/fetcher"
	"github.com/jmylchreest/catalogx/pkg/product"
	"github.com/jmylchreest/catalogx/pkg/selector"
)

// Exporter persists the records of one listing page and returns the path of
// the artifact it wrote.
type Exporter interface {
	Export(ctx context.Context, page int, records []product.Record) (string, error)
}

// Pipeline processes listing pages strictly in sequence.
type Pipeline struct {
	cfg       selector.Config
	fetcher   fetcher.Fetcher
	exporter  Exporter
	builder   *product.Builder
	fetchOpts fetcher.Options
	isolate   bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPageIsolation makes a failed page non-fatal: the page is logged and
// skipped, the run continues, and Run returns every page error joined.
func WithPageIsolation(isolate bool) Option {
	return func(p *Pipeline) {
		p.isolate = isolate
	}
}

// WithFetchOptions sets the options passed on every fetch.
func WithFetchOptions(opts fetcher.Options) Option {
	return func(p *Pipeline) {
		p.fetchOpts = opts
	}
}

// WithBuilder overrides the record builder derived from the config.
func WithBuilder(b *product.Builder) Option {
	return func(p *Pipeline) {
		p.builder = b
	}
}

// New creates a Pipeline. The config is assumed to be validated.
func New(cfg selector.Config, f fetcher.Fetcher, exp Exporter, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		fetcher:  f,
		exporter: exp,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.builder == nil {
		p.builder = product.NewBuilder(cfg)
	}
	return p
}

// Run processes pages in the given order and returns every record built.
// By default the first failure aborts the run and the failing page is not
// exported; pages exported before it stay on disk.
func (p *Pipeline) Run(ctx context.Context, pages []int) ([]product.Record, error) {
	logger.InfoContext(ctx, "catalog run starting",
		"pages", len(pages),
		"fetcher", p.fetcher.Type(),
		"page_isolation", p.isolate)

	start := time.Now()
	var all []product.Record
	var errs []error

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return all, errors.Join(append(errs, err)...)
		}

		records, err := p.RunPage(ctx, page)
		if err != nil {
			if !p.isolate || ctx.Err() != nil {
				logger.ErrorContext(ctx, "catalog run aborted", "page", page, "records", len(all), "error", err)
				return all, errors.Join(append(errs, err)...)
			}
			logger.Warn("page skipped", "page", page, "error", err)
			errs = append(errs, err)
			continue
		}
		all = append(all, records...)
	}

	logger.InfoContext(ctx, "catalog run complete",
		"pages", len(pages),
		"failed_pages", len(errs),
		"records", len(all),
		"duration", time.Since(start).Round(time.Millisecond))

	return all, errors.Join(errs...)
}

// RunPage scrapes a single listing page and exports its records.
func (p *Pipeline) RunPage(ctx context.Context, page int) ([]product.Record, error) {
	log := logger.With("page", page)

	records, err := p.scrapePage(ctx, log, page)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}

	path, err := p.exporter.Export(ctx, page, records)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}

	log.Info("page exported", "records", len(records), "path", path)
	return records, nil
}

func (p *Pipeline) scrapePage(ctx context.Context, log *slog.Logger, page int) ([]product.Record, error) {
	listingURL, err := ListingURL(p.cfg.BaseURL, page)
	if err != nil {
		return nil, err
	}

	log.Debug("fetching listing", "url", listingURL)
	listing, err := p.fetchDocument(ctx, listingURL)
	if err != nil {
		return nil, err
	}

	links, err := ResolveLinks(listingURL, extract.Attribute(listing, p.cfg.ProductLink, "href"))
	if err != nil {
		return nil, err
	}
	log.Info("listing parsed", "links", len(links))

	records := make([]product.Record, 0, len(links))
	for i, link := range links {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log.Debug("fetching product", "index", i+1, "total", len(links), "url", link)
		doc, err := p.fetchDocument(ctx, link)
		if err != nil {
			return nil, err
		}

		rec, err := p.builder.Build(doc, link)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// fetchDocument fetches and parses a page. Every failure, including a
// document that cannot be decoded, is reported as a *fetcher.FetchError.
func (p *Pipeline) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	content, err := p.fetcher.Fetch(ctx, url, p.fetchOpts)
	if err != nil {
		var fetchErr *fetcher.FetchError
		if errors.As(err, &fetchErr) {
			return nil, err
		}
		return nil, &fetcher.FetchError{URL: url, StatusCode: content.StatusCode, Err: err}
	}
	if !fetcher.Success(content.StatusCode) {
		return nil, &fetcher.FetchError{URL: url, StatusCode: content.StatusCode}
	}

	doc, err := extract.Parse(content.HTML, content.ContentType)
	if err != nil {
		return nil, &fetcher.FetchError{URL: url, StatusCode: content.StatusCode, Err: err}
	}
	return doc, nil
}
