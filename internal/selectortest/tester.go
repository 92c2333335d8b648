package selectortest

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/KvizadSaderah/bg-real-estate-finder-sub001/internal/parser"
)

// FieldResult reports the outcome of evaluating one field selector against
// a live page.
type FieldResult struct {
	Found    bool   `json:"found"`
	Value    string `json:"value,omitempty"`
	Error    string `json:"error,omitempty"`
	Selector string `json:"selector"`
}

// Cache is the subset of the page cache the tester needs.
type Cache interface {
	Get(ctx context.Context, url string) (string, bool, error)
	Put(ctx context.Context, url, html string, ttl time.Duration) error
}

// Tester fetches a page and evaluates a selector set against it.
type Tester struct {
	fetcher  Fetcher
	rendered Fetcher
	cache    Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewTester builds a tester. rendered may be nil when headless fetching is
// not available; cache may be nil to disable page caching.
func NewTester(fetcher, rendered Fetcher, cache Cache, cacheTTL time.Duration, logger *zap.Logger) *Tester {
	return &Tester{
		fetcher:  fetcher,
		rendered: rendered,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Run fetches the URL (through the cache when possible) and evaluates every
// selector in the set. render selects the headless fetcher. Extracted link
// and image URLs are resolved against the page URL.
func (t *Tester) Run(ctx context.Context, pageURL, userAgent string, render bool, selectors parser.SelectorSet) (map[string]FieldResult, error) {
	htmlContent, err := t.fetchPage(ctx, pageURL, userAgent, render)
	if err != nil {
		return nil, err
	}
	results, err := Evaluate(htmlContent, selectors)
	if err != nil {
		return nil, err
	}
	resolveURLValues(pageURL, selectors, results)
	return results, nil
}

// resolveURLValues rewrites href/src results to absolute URLs so the panel
// shows something clickable.
func resolveURLValues(pageURL string, selectors parser.SelectorSet, results map[string]FieldResult) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return
	}
	for name, result := range results {
		if !result.Found {
			continue
		}
		attr := parser.AttrText
		if fs, ok := selectors.Fields[name]; ok {
			attr = fs.Attribute
		} else if name == "propertyLinks" {
			attr = parser.AttrHref
		}
		if attr != parser.AttrHref && attr != parser.AttrSrc {
			continue
		}
		ref, err := url.Parse(result.Value)
		if err != nil {
			continue
		}
		result.Value = base.ResolveReference(ref).String()
		results[name] = result
	}
}

func (t *Tester) fetchPage(ctx context.Context, pageURL, userAgent string, render bool) (string, error) {
	// Rendered and plain fetches of the same URL produce different HTML, so
	// they cache under different keys.
	cacheKey := pageURL
	if render {
		cacheKey = "rendered:" + pageURL
	}
	if t.cache != nil {
		cached, ok, err := t.cache.Get(ctx, cacheKey)
		if err != nil {
			t.logger.Warn("page cache read failed", zap.String("url", pageURL), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	fetcher := t.fetcher
	if render && t.rendered != nil {
		fetcher = t.rendered
	}
	htmlContent, err := fetcher.Fetch(ctx, pageURL, userAgent)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}

	if t.cache != nil {
		if err := t.cache.Put(ctx, cacheKey, htmlContent, t.cacheTTL); err != nil {
			t.logger.Warn("page cache write failed", zap.String("url", pageURL), zap.Error(err))
		}
	}
	return htmlContent, nil
}

// Evaluate runs every selector in the set against the given HTML and
// reports per-field extraction results. Navigation selectors are evaluated
// too: propertyLinks extracts the first matched href, nextPageButton the
// matched element text.
func Evaluate(htmlContent string, selectors parser.SelectorSet) (map[string]FieldResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	results := make(map[string]FieldResult, len(selectors.Fields)+2)
	for name, fs := range selectors.Fields {
		results[name] = evaluateField(doc, fs)
	}
	if selectors.PropertyLinks != "" {
		results["propertyLinks"] = evaluateField(doc, parser.FieldSelector{
			Selector:  selectors.PropertyLinks,
			Attribute: parser.AttrHref,
		})
	}
	if selectors.NextPageButton != "" {
		results["nextPageButton"] = evaluateField(doc, parser.FieldSelector{
			Selector:  selectors.NextPageButton,
			Attribute: parser.AttrText,
		})
	}
	return results, nil
}

func evaluateField(doc *goquery.Document, fs parser.FieldSelector) FieldResult {
	result := FieldResult{Selector: fs.Selector}

	sel := doc.Find(fs.Selector)
	if sel.Length() == 0 {
		result.Error = "no element matched"
		return result
	}
	first := sel.First()

	var value string
	switch fs.Attribute {
	case "", parser.AttrText:
		value = strings.TrimSpace(first.Text())
	default:
		attr, ok := first.Attr(fs.Attribute)
		if !ok {
			result.Error = fmt.Sprintf("matched element has no %q attribute", fs.Attribute)
			return result
		}
		value = strings.TrimSpace(attr)
	}

	if fs.Regex != "" {
		re, err := regexp.Compile(fs.Regex)
		if err != nil {
			result.Error = fmt.Sprintf("invalid regex: %v", err)
			return result
		}
		match := re.FindStringSubmatch(value)
		if match == nil {
			result.Error = fmt.Sprintf("regex did not match %q", value)
			return result
		}
		// Prefer the first capture group when one is present.
		if len(match) > 1 {
			value = match[1]
		} else {
			value = match[0]
		}
	}

	result.Found = true
	result.Value = value
	return result
}
