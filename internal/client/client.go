package client

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"pricewatch/internal/misc"
	"pricewatch/internal/model"
	"pricewatch/internal/parse"
)

const maxBodyBytes = 2 * 1024 * 1024

var (
	ErrFetch         = errors.New("fetch failed")
	ErrPriceNotFound = errors.New("price not found")
	ErrUnavailable   = errors.New("product unavailable")
)

// Client fetches and scrapes product pages. The embedded http.Client owns
// the request timeout.
type Client struct {
	*http.Client
	UserAgents     []string
	MaxRetries     int
	RetryBackoff   time.Duration
	CaptchaBackoff time.Duration
	JitterMax      time.Duration
	MaxPrice       float64
	Logger         logger
}

type logger interface {
	Debug(v ...any)
	Warn(v ...any)
	Debugf(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}

// ScrapeProduct runs the fetch, extract, parse pipeline for one URL.
// Returned errors match on ErrFetch, ErrUnavailable or ErrPriceNotFound.
func (c Client) ScrapeProduct(ctx context.Context, url string) (model.ProductInfo, error) {
	var info model.ProductInfo
	doc, err := c.FetchPage(ctx, url)
	if err != nil {
		return info, err
	}

	maxPrice := c.MaxPrice
	if maxPrice <= 0 {
		maxPrice = parse.DefaultMaxPrice
	}
	ext := ExtractorForURL(url)
	info, err = ext.Extract(doc, url, maxPrice)
	if err != nil {
		return info, err
	}
	info.URL = url
	if info.Site == "" {
		info.Site = ext.Site()
	}

	if info.PriceText == "" {
		return info, errors.Wrapf(ErrPriceNotFound,
			"could not find price on %s, page structure may have changed", parse.SiteName(url))
	}
	price, err := parse.CurrencyMax(info.PriceText, maxPrice)
	if err != nil {
		return info, errors.Wrapf(ErrPriceNotFound, "unparsable price text %q on %s: %v",
			misc.StringLimit(info.PriceText, 50), parse.SiteName(url), err)
	}
	info.Price = price
	return info, nil
}

// FetchPage retrieves and parses a page. Transport errors, HTTP 429 and
// 5xx responses are retried with exponential backoff; a captcha marker in
// the body gets the longer configured backoff. A random courtesy delay
// precedes every request.
func (c Client) FetchPage(ctx context.Context, url string) (*goquery.Document, error) {
	attempts := c.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := c.RetryBackoff * (1 << (attempt - 1))
			c.Logger.Debugf("FetchPage: Attempt %d for %s, backing off %v", attempt+1, url, backoff)
			if err := sleepCtx(ctx, backoff); err != nil {
				return nil, errors.Wrapf(ErrFetch, "cancelled while backing off for url: %s", url)
			}
		}
		if c.JitterMax > 0 {
			if err := sleepCtx(ctx, time.Duration(rand.Int63n(int64(c.JitterMax)))); err != nil {
				return nil, errors.Wrapf(ErrFetch, "cancelled while waiting to request url: %s", url)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "error creating request from URL: %s", url)
		}
		c.setRequestHeader(req)

		resp, err := c.Client.Do(req)
		if err != nil {
			lastErr = errors.Wrapf(err, "error doing request to url: %s", url)
			c.Logger.Warnf("FetchPage: Attempt %d failed for %s, err: %v", attempt+1, url, err)
			continue
		}

		body, err := io.ReadAll(http.MaxBytesReader(nil, resp.Body, maxBodyBytes))
		if cerr := resp.Body.Close(); cerr != nil {
			c.Logger.Errorf("FetchPage: Error closing response body for url: %s, err: %v", url, cerr)
		}
		if err != nil {
			lastErr = errors.Wrapf(err, "error reading response body, status: %s, url: %s", resp.Status, url)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = errors.Errorf("server error, status: %s, url: %s, body:\n%s",
				resp.Status, url, misc.BytesLimit(body, 500))
			c.Logger.Warnf("FetchPage: Attempt %d got status %s for %s", attempt+1, resp.Status, url)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, errors.Wrapf(ErrFetch, "unexpected status %s for url: %s, body:\n%s",
				resp.Status, url, misc.BytesLimit(body, 500))
		}

		if bytes.Contains(bytes.ToLower(body), []byte("captcha")) {
			lastErr = errors.Errorf("captcha marker detected, url: %s", url)
			c.Logger.Warnf("FetchPage: Captcha marker detected for %s, backing off %v", url, c.CaptchaBackoff)
			if err := sleepCtx(ctx, c.CaptchaBackoff); err != nil {
				return nil, errors.Wrapf(ErrFetch, "cancelled while backing off from captcha, url: %s", url)
			}
			continue
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return nil, errors.Wrapf(err, "error parsing page from url: %s", url)
		}
		return doc, nil
	}
	return nil, errors.Wrapf(ErrFetch, "giving up on url: %s after %d attempt(s), last err: %v", url, attempts, lastErr)
}

func (c Client) setRequestHeader(r *http.Request) {
	ua := "Mozilla/5.0"
	if len(c.UserAgents) > 0 {
		ua = c.UserAgents[rand.Intn(len(c.UserAgents))]
	}
	r.Header.Set("User-Agent", ua)
	r.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	r.Header.Set("Accept-Language", "en-US,en;q=0.5")
	r.Header.Set("Connection", "keep-alive")
	r.Header.Set("Upgrade-Insecure-Requests", "1")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SiteSupported reports whether a dedicated extractor exists for the URL's
// site. Unsupported sites still work through the generic extractor.
func SiteSupported(url string) bool {
	_, ok := extractors[parse.SiteName(url)]
	return ok
}
