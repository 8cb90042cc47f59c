// Package emap talks to the convenience-store locator ("e-map") SearchStore endpoint.
package emap

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"toiletsync/internal/adapters/observability"
	"toiletsync/internal/domain"
)

const DefaultURL = "https://emap.pcsc.com.tw/EMapSDK.aspx"

type Client struct {
	url string
	hc  *resty.Client
	rl  *rate.Limiter
}

func New(url string, rps int, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	hc := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "toiletsync/1.0").
		SetHeader("Accept", "text/xml, application/xml, */*")
	return &Client{
		url: url,
		hc:  hc,
		rl:  rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// SearchStores runs one SearchStore query for a city/town pair and returns every
// parsed store, restroom or not. No retries.
func (c *Client) SearchStores(ctx context.Context, city, town string) ([]domain.Store, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.hc.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"commandid": "SearchStore",
			"city":      city,
			"town":      town,
		}).
		Post(c.url)
	if err != nil {
		observability.ObserveExternal("emap", "SearchStore", 0, time.Since(start))
		return nil, fmt.Errorf("search %s %s: %w", city, town, err)
	}
	observability.ObserveExternal("emap", "SearchStore", resp.StatusCode(), time.Since(start))

	if resp.IsError() {
		return nil, fmt.Errorf("search %s %s: bad status %d: %s", city, town, resp.StatusCode(), snippet(resp.String(), 256))
	}
	return ParseStores(resp.String()), nil
}

// snippet cuts s to at most n bytes without splitting a UTF-8 sequence.
func snippet(s string, n int) string {
	if len(s) > n {
		cut := n
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return strings.TrimSpace(s)
}

// FetchRegion never fails: a transport or status error is logged and reported
// as an empty, Failed fetch so the caller can move on to the next region.
func (c *Client) FetchRegion(ctx context.Context, r domain.Region) domain.RegionFetch {
	stores, err := c.SearchStores(ctx, r.CityName, r.Name)
	if err != nil {
		log.Warn().Err(err).Str("err_type", observability.LabelErr(err)).Str("region", r.ID).Str("name", r.Label).Msg("region fetch failed")
		return domain.RegionFetch{Failed: true}
	}
	out := domain.RegionFetch{Found: len(stores)}
	for _, s := range stores {
		if s.HasToilet {
			out.Stores = append(out.Stores, s)
		}
	}
	return out
}
