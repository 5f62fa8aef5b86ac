package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/revivewell/internal/metrics"
)

// ErrLocationNotFound 表示地理编码没有返回结果
var ErrLocationNotFound = errors.New("location not found")

// Coordinates 为 WGS84 经纬度
type Coordinates struct {
	Lat float64
	Lng float64
}

// Geocoder 把地名解析为坐标
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*Coordinates, error)
}

const defaultNominatimURL = "https://nominatim.openstreetmap.org"

// NominatimGeocoder 调用 OpenStreetMap Nominatim 搜索接口
type NominatimGeocoder struct {
	client    httpDoer
	baseURL   string
	userAgent string
}

// NewNominatimGeocoder 构造 NominatimGeocoder，baseURL 为空时使用公共实例
func NewNominatimGeocoder(baseURL string) *NominatimGeocoder {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultNominatimURL
	}
	return &NominatimGeocoder{
		client:    &http.Client{Timeout: 10 * time.Second},
		baseURL:   baseURL,
		userAgent: "revivewell-meetings-finder",
	}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (g *NominatimGeocoder) SetHTTPClient(client httpDoer) {
	g.client = client
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode 返回第一条匹配结果
func (g *NominatimGeocoder) Geocode(ctx context.Context, query string) (coords *Coordinates, err error) {
	defer func() { metrics.RecordUpstream("geocoder", err) }()

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create geocode request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode %q: unexpected status %d", query, resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&places); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrLocationNotFound, query)
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse longitude: %w", err)
	}
	return &Coordinates{Lat: lat, Lng: lng}, nil
}
