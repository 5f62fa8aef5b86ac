package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/revivewell/internal/logging"
	"github.com/revivewell/internal/metrics"
	xhtml "golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

// NotAvailable 填充无法从卡片中解析出的字段
const NotAvailable = "N/A"

const (
	defaultUserAgent = "Mozilla/5.0"
	maxPageBytes     = 4 << 20
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Listing 是一条活动信息
type Listing struct {
	Name   string `json:"name"`
	Date   string `json:"date"`
	Link   string `json:"link"`
	Source string `json:"source"`
}

// ListingFetcher 抓取活动列表；query 非空时只保留名称包含它的条目
// 单个来源失败不影响整体结果
type ListingFetcher interface {
	FetchListings(ctx context.Context, query string) ([]Listing, error)
}

// Source 描述一个活动站点及其卡片选择器
// FixedLink 非空时所有条目都使用该链接
type Source struct {
	Name      string
	URL       string
	Card      string
	Title     string
	Date      string
	Link      string
	FixedLink string
}

// DefaultSources 返回泰米尔纳德邦的三个活动站点
func DefaultSources() []Source {
	return []Source{
		{
			Name:  "Eventbrite",
			URL:   "https://www.eventbrite.com/d/india--tamil-nadu/events/",
			Card:  ".eds-event-card-content__content",
			Title: ".eds-event-card-content__title",
			Date:  ".eds-event-card-content__sub-title",
			Link:  "a.eds-event-card-content__action-link",
		},
		{
			Name:      "BookMyShow",
			URL:       "https://in.bookmyshow.com/events",
			Card:      ".style__CardContainer-sc-6x3x4h-6",
			Title:     ".style__EventTitle-sc-6x3x4h-9",
			Date:      ".style__CardText-sc-6x3x4h-12",
			FixedLink: "https://in.bookmyshow.com/events",
		},
		{
			Name:  "Townscript",
			URL:   "https://www.townscript.com/in/tamil-nadu/events",
			Card:  ".event-card",
			Title: ".event-title",
			Date:  ".event-date",
			Link:  "a",
		},
	}
}

// EventScraper 并发抓取所有来源，结果按来源顺序拼接
type EventScraper struct {
	client    httpDoer
	sources   []Source
	userAgent string
}

// NewEventScraper 构造 EventScraper，未指定来源时使用 DefaultSources
func NewEventScraper(sources ...Source) *EventScraper {
	if len(sources) == 0 {
		sources = DefaultSources()
	}
	return &EventScraper{
		client:    &http.Client{Timeout: 20 * time.Second},
		sources:   sources,
		userAgent: defaultUserAgent,
	}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (s *EventScraper) SetHTTPClient(client httpDoer) {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	s.client = client
}

// FetchListings 抓取全部来源；失败的来源记录日志后跳过
func (s *EventScraper) FetchListings(ctx context.Context, query string) ([]Listing, error) {
	results := make([][]Listing, len(s.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, source := range s.sources {
		i, source := i, source
		g.Go(func() error {
			listings, err := s.fetchSource(gctx, source)
			metrics.RecordUpstream("events:"+source.Name, err)
			if err != nil {
				logging.Warn().Err(err).Str("source", source.Name).Msg("event source failed")
				return nil
			}
			results[i] = listings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	var all []Listing
	for _, listings := range results {
		for _, listing := range listings {
			if query != "" && !strings.Contains(strings.ToLower(listing.Name), query) {
				continue
			}
			all = append(all, listing)
		}
	}
	return all, nil
}

func (s *EventScraper) fetchSource(ctx context.Context, source Source) ([]Listing, error) {
	doc, err := fetchDocument(ctx, s.client, source.URL, s.userAgent)
	if err != nil {
		return nil, err
	}
	return parseListings(doc, source), nil
}

func parseListings(doc *xhtml.Node, source Source) []Listing {
	var listings []Listing
	for _, card := range selectAll(doc, parseSelector(source.Card)) {
		listing := Listing{
			Name:   textOrNA(selectFirst(card, parseSelector(source.Title))),
			Date:   textOrNA(selectFirst(card, parseSelector(source.Date))),
			Link:   NotAvailable,
			Source: source.Name,
		}
		switch {
		case source.FixedLink != "":
			listing.Link = source.FixedLink
		case source.Link != "":
			if anchor := selectFirst(card, parseSelector(source.Link)); anchor != nil {
				if href, ok := attr(anchor, "href"); ok {
					listing.Link = href
				}
			}
		}
		listings = append(listings, listing)
	}
	return listings
}

func textOrNA(n *xhtml.Node) string {
	if n == nil {
		return NotAvailable
	}
	return inlineText(n)
}

func fetchDocument(ctx context.Context, client httpDoer, url, userAgent string) (*xhtml.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	doc, err := xhtml.Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}
