package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/revivewell/internal/logging"
	"github.com/revivewell/internal/metrics"
	xhtml "golang.org/x/net/html"
)

// 结果来源
const (
	MeetingSourceLive     = "live"
	MeetingSourceFallback = "fallback"
)

const (
	// DefaultMeetingLocation 未指定城市时使用
	DefaultMeetingLocation = "Chennai"

	defaultMeetingsURL = "https://www.aa.org/find-aa/north-america"
	browserUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	phoneUnavailable   = "Not available"
	phoneWindow        = 500
)

// Meeting 是一个互助会资源
type Meeting struct {
	Name     string `json:"name"`
	Distance string `json:"distance"`
	Location string `json:"location"`
	Phone    string `json:"phone"`
	Website  string `json:"website"`
	URL      string `json:"url"`
}

// MeetingResult 汇总一次查询，Warning 仅在降级时填写
type MeetingResult struct {
	Location string    `json:"location"`
	Source   string    `json:"source"`
	URL      string    `json:"url,omitempty"`
	Meetings []Meeting `json:"meetings"`
	Warning  string    `json:"warning,omitempty"`
}

// MeetingFinder 查询城市附近的互助会，任何失败都以内置数据兜底
type MeetingFinder interface {
	FindMeetings(ctx context.Context, location string) MeetingResult
}

// MeetingLocator 先地理编码，再抓取 aa.org 的查找页面
type MeetingLocator struct {
	geocoder Geocoder
	client   httpDoer
	baseURL  string
}

// NewMeetingLocator 构造 MeetingLocator
func NewMeetingLocator(geocoder Geocoder, baseURL string) *MeetingLocator {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultMeetingsURL
	}
	return &MeetingLocator{
		geocoder: geocoder,
		client:   &http.Client{Timeout: 20 * time.Second},
		baseURL:  baseURL,
	}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (l *MeetingLocator) SetHTTPClient(client httpDoer) {
	l.client = client
}

// FindMeetings 返回实时结果，失败时返回内置的 Chennai 数据并附带警告
func (l *MeetingLocator) FindMeetings(ctx context.Context, location string) MeetingResult {
	location = strings.TrimSpace(location)
	if location == "" {
		location = DefaultMeetingLocation
	}

	meetings, pageURL, err := l.findLive(ctx, location)
	metrics.RecordUpstream("meetings", err)
	if err != nil {
		logging.Warn().Err(err).Str("location", location).Msg("meeting lookup fell back to static data")
		return MeetingResult{
			Location: location,
			Source:   MeetingSourceFallback,
			URL:      pageURL,
			Meetings: fallbackMeetings(pageURL),
			Warning:  err.Error(),
		}
	}

	return MeetingResult{
		Location: location,
		Source:   MeetingSourceLive,
		URL:      pageURL,
		Meetings: meetings,
	}
}

func (l *MeetingLocator) findLive(ctx context.Context, location string) ([]Meeting, string, error) {
	if l.geocoder == nil {
		return nil, "", fmt.Errorf("no geocoder configured")
	}

	query := location + ", India"
	coords, err := l.geocoder.Geocode(ctx, query)
	if err != nil {
		return nil, "", fmt.Errorf("could not find coordinates for %s: %w", query, err)
	}

	pageURL := l.searchURL(*coords, location)
	doc, err := fetchDocument(ctx, l.client, pageURL, browserUserAgent)
	if err != nil {
		return nil, pageURL, err
	}

	meetings := parseMeetings(doc, location, pageURL)
	if len(meetings) == 0 {
		return nil, pageURL, fmt.Errorf("could not parse meetings from %s", pageURL)
	}
	return meetings, pageURL, nil
}

func (l *MeetingLocator) searchURL(coords Coordinates, location string) string {
	params := url.Values{}
	params.Set("dist_center[coordinates][lat]", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	params.Set("dist_center[coordinates][lng]", strconv.FormatFloat(coords.Lng, 'f', -1, 64))
	params.Set("dist_center[geocoder][geolocation_geocoder_address]", location+", India")
	return l.baseURL + "?" + params.Encode()
}

var (
	nameDistancePattern = regexp.MustCompile(`(.+?)\s*\((\d+\.\d+\s*miles)\)`)
	groupPattern        = regexp.MustCompile(`([A-Za-z \t\-\.]+(?:Intergroup|Group)[A-Za-z \t\-\.]*)[ \t]*\((\d+\.\d+\s*miles)\)`)
	distancePattern     = regexp.MustCompile(`\d+\.\d+\s*miles`)
	phonePattern        = regexp.MustCompile(`Phone:?\s*(\+?[\d(][\d\s\-()+]*\d)`)
	websitePattern      = regexp.MustCompile(`https?://[^\s"'<>]+`)
)

// parseMeetings 依次尝试：资源卡片元素、正文中的 "Name (X.XX miles)" 模式、
// "Closest Local Resources" 段落的逐行解析
func parseMeetings(doc *xhtml.Node, location, pageURL string) []Meeting {
	if meetings := parseResourceRows(doc, location, pageURL); len(meetings) > 0 {
		return meetings
	}

	root := selectFirst(doc, parseSelector("main"))
	if root == nil {
		root = doc
	}
	text := blockText(root)
	if meetings := parseGroupPattern(text, location, pageURL); len(meetings) > 0 {
		return meetings
	}
	return parseResourceSection(blockText(doc), location, pageURL)
}

func parseResourceRows(doc *xhtml.Node, location, pageURL string) []Meeting {
	rows := findElements(doc, "div", func(class string) bool {
		return strings.Contains(class, "views-row") ||
			strings.Contains(class, "resource-item") ||
			strings.Contains(class, "intergroup-item")
	})

	var meetings []Meeting
	for _, row := range rows {
		rowLines := lines(blockText(row))
		if len(rowLines) == 0 {
			continue
		}

		meeting := Meeting{Location: location, Phone: phoneUnavailable, URL: pageURL}
		for _, line := range rowLines {
			if m := nameDistancePattern.FindStringSubmatch(line); m != nil && meeting.Name == "" {
				meeting.Name = strings.TrimSpace(m[1])
				meeting.Distance = normalizeDistance(m[2])
				continue
			}
			if meeting.Distance == "" {
				if d := distancePattern.FindString(line); d != "" {
					meeting.Distance = normalizeDistance(d)
					continue
				}
			}
			if m := phonePattern.FindStringSubmatch(line); m != nil {
				meeting.Phone = strings.TrimSpace(m[1])
				continue
			}
			if w := websitePattern.FindString(line); w != "" && meeting.Website == "" {
				meeting.Website = w
			}
		}
		if meeting.Name == "" {
			meeting.Name = rowLines[0]
		}
		if meeting.Distance == "" {
			continue
		}
		meetings = append(meetings, meeting)
	}
	return meetings
}

func parseGroupPattern(text, location, pageURL string) []Meeting {
	var meetings []Meeting
	for _, idx := range groupPattern.FindAllStringSubmatchIndex(text, -1) {
		name := strings.Join(strings.Fields(text[idx[2]:idx[3]]), " ")
		distance := normalizeDistance(text[idx[4]:idx[5]])

		end := idx[1] + phoneWindow
		if end > len(text) {
			end = len(text)
		}
		window := text[idx[1]:end]

		meeting := Meeting{
			Name:     name,
			Distance: distance,
			Location: location,
			Phone:    phoneUnavailable,
			URL:      pageURL,
		}
		if m := phonePattern.FindStringSubmatch(window); m != nil {
			meeting.Phone = strings.TrimSpace(m[1])
		}
		meeting.Website = websitePattern.FindString(window)
		meetings = append(meetings, meeting)
	}
	return meetings
}

func parseResourceSection(text, location, pageURL string) []Meeting {
	start := strings.Index(text, "Closest Local Resources")
	if start < 0 {
		return nil
	}
	section := text[start:]
	if len(section) > 2000 {
		section = section[:2000]
	}

	var (
		meetings []Meeting
		current  *Meeting
		city     string
	)
	flush := func() {
		if current == nil {
			return
		}
		if city != "" {
			current.Location = city
		}
		meetings = append(meetings, *current)
	}

	for _, line := range lines(section)[1:] {
		if m := nameDistancePattern.FindStringSubmatch(line); m != nil {
			flush()
			current = &Meeting{
				Name:     strings.TrimSpace(m[1]),
				Distance: normalizeDistance(m[2]),
				Location: location,
				Phone:    phoneUnavailable,
				URL:      pageURL,
			}
			city = ""
			continue
		}
		if current == nil {
			continue
		}
		if m := phonePattern.FindStringSubmatch(line); m != nil {
			current.Phone = strings.TrimSpace(m[1])
			continue
		}
		if w := websitePattern.FindString(line); w != "" {
			current.Website = w
			continue
		}
		if city == "" && len(line) < 50 {
			city = line
		}
	}
	flush()
	return meetings
}

func normalizeDistance(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// fallbackMeetings 是 Chennai 附近的已知资源
func fallbackMeetings(pageURL string) []Meeting {
	return []Meeting{
		{Name: "Chennai Intergroup", Distance: "6.97 miles", Location: "Chennai", Phone: "(+91) 4426441941", URL: pageURL},
		{Name: "Intergroup Of A.A. (Chennai)", Distance: "8.18 miles", Location: "Chennai", Phone: "(+91) 04426441941", URL: pageURL},
		{Name: "Kerala - Wayanad Intergroup", Distance: "288.35 miles", Location: "Wayanad", Phone: "(+91) 9388811009", Website: "http://aawmig.org", URL: pageURL},
	}
}
