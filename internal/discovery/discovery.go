package discovery

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/guttosm/spimexpulse/internal/fetcher"
	"github.com/guttosm/spimexpulse/internal/logger"
)

const pageCapacity = 64

// Discoverer walks the paginated bulletin listing and collects report URLs.
type Discoverer struct {
	fetcher     fetcher.Fetcher
	listingURL  *url.URL
	selector    string
	titleMarker string
}

// Options configures a Discoverer.
//
// Fields:
//   - ListingURL: absolute listing endpoint; pages are requested as ListingURL?page=N.
//   - Selector: CSS selector of bulletin anchors.
//   - TitleMarker: substring an anchor's text must contain to be collected.
type Options struct {
	ListingURL  string
	Selector    string
	TitleMarker string
}

// New validates opts and returns a Discoverer.
func New(f fetcher.Fetcher, opts Options) (*Discoverer, error) {
	u, err := url.Parse(opts.ListingURL)
	if err != nil {
		return nil, fmt.Errorf("discovery: parse listing url: %w", err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("discovery: listing url %q is not absolute", opts.ListingURL)
	}
	if strings.TrimSpace(opts.Selector) == "" {
		return nil, fmt.Errorf("discovery: empty link selector")
	}
	return &Discoverer{
		fetcher:     f,
		listingURL:  u,
		selector:    opts.Selector,
		titleMarker: opts.TitleMarker,
	}, nil
}

// Discover returns at most limit bulletin URLs in listing order.
//
// Behavior:
//   - Requests page 1, 2, ... until limit URLs are collected.
//   - Stops early on a failed page request, a non-200 page, an unparsable page,
//     or a page without any anchor matching the selector.
//   - Collected URLs are never discarded: a partial list is a valid result.
func (d *Discoverer) Discover(ctx context.Context, limit int) []string {
	lg := logger.With("discovery")
	if limit <= 0 {
		return []string{}
	}

	links := make([]string, 0, min(limit, pageCapacity))
	for page := 1; len(links) < limit; page++ {
		pageURL := d.pageURL(page)
		body, err := d.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			lg.Warn().Err(err).Int("page", page).Str("url", pageURL).Msg("listing page failed; stopping")
			break
		}

		found, anchors, err := d.extract(body)
		if err != nil {
			lg.Warn().Err(err).Int("page", page).Msg("listing page unparsable; stopping")
			break
		}
		if anchors == 0 {
			lg.Info().Int("page", page).Msg("listing exhausted")
			break
		}

		for _, link := range found {
			links = append(links, link)
			lg.Debug().Int("page", page).Str("url", link).Msg("bulletin link")
			if len(links) >= limit {
				break
			}
		}
	}

	lg.Info().Int("links", len(links)).Int("limit", limit).Msg("discovery done")
	return links
}

func (d *Discoverer) pageURL(page int) string {
	u := *d.listingURL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// extract returns the resolved links of matching anchors and the number of anchors
// matched by the selector before title filtering.
func (d *Discoverer) extract(body []byte) ([]string, int, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("parse listing html: %w", err)
	}

	var out []string
	sel := doc.Find(d.selector)
	sel.Each(func(_ int, s *goquery.Selection) {
		if !strings.Contains(s.Text(), d.titleMarker) {
			return
		}
		href, ok := s.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		out = append(out, d.listingURL.ResolveReference(ref).String())
	})
	return out, sel.Length(), nil
}
