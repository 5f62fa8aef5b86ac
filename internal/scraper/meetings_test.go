package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakeGeocoder struct {
	coords *Coordinates
	err    error
	query  string
}

func (f *fakeGeocoder) Geocode(_ context.Context, query string) (*Coordinates, error) {
	f.query = query
	return f.coords, f.err
}

func newMeetingServer(t *testing.T, status int, body string) (*httptest.Server, *string) {
	t.Helper()
	var rawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &rawQuery
}

func TestFindMeetingsParsesResourceRows(t *testing.T) {
	page := `<html><body>
<div class="views-row">
  <h3>Madurai Intergroup (12.50 miles)</h3>
  <p>Madurai</p>
  <p>Phone: (+91) 4522345678</p>
  <p><a href="https://madurai-aa.test">https://madurai-aa.test</a></p>
</div>
<div class="views-row"><h3>Header without distance</h3></div>
</body></html>`
	srv, rawQuery := newMeetingServer(t, http.StatusOK, page)
	geocoder := &fakeGeocoder{coords: &Coordinates{Lat: 9.93, Lng: 78.12}}

	locator := NewMeetingLocator(geocoder, srv.URL)
	result := locator.FindMeetings(context.Background(), "Madurai")

	if geocoder.query != "Madurai, India" {
		t.Fatalf("unexpected geocode query %q", geocoder.query)
	}
	if !strings.Contains(*rawQuery, "lat%5D=9.93") || !strings.Contains(*rawQuery, "lng%5D=78.12") {
		t.Fatalf("coordinates missing from search url: %s", *rawQuery)
	}
	if result.Source != MeetingSourceLive || result.Warning != "" {
		t.Fatalf("expected live result, got %#v", result)
	}
	if len(result.Meetings) != 1 {
		t.Fatalf("expected one meeting, got %#v", result.Meetings)
	}
	got := result.Meetings[0]
	if got.Name != "Madurai Intergroup" || got.Distance != "12.50 miles" {
		t.Fatalf("unexpected meeting: %#v", got)
	}
	if got.Phone != "(+91) 4522345678" || got.Website != "https://madurai-aa.test" {
		t.Fatalf("unexpected contact details: %#v", got)
	}
}

func TestFindMeetingsParsesMainText(t *testing.T) {
	page := `<html><body><main>
<p>Results near you:</p>
<p>Coimbatore Intergroup (20.10 miles) Phone: +91 422 1234567</p>
<p>Salem Group (40.00 miles)</p>
</main></body></html>`
	srv, _ := newMeetingServer(t, http.StatusOK, page)

	locator := NewMeetingLocator(&fakeGeocoder{coords: &Coordinates{Lat: 11, Lng: 77}}, srv.URL)
	result := locator.FindMeetings(context.Background(), "Coimbatore")

	if result.Source != MeetingSourceLive || len(result.Meetings) != 2 {
		t.Fatalf("expected two live meetings, got %#v", result)
	}
	if result.Meetings[0].Name != "Coimbatore Intergroup" || result.Meetings[0].Phone != "+91 422 1234567" {
		t.Fatalf("unexpected first meeting: %#v", result.Meetings[0])
	}
	if result.Meetings[1].Name != "Salem Group" || result.Meetings[1].Distance != "40.00 miles" {
		t.Fatalf("unexpected second meeting: %#v", result.Meetings[1])
	}
	if result.Meetings[1].Phone != phoneUnavailable {
		t.Fatalf("expected placeholder phone, got %q", result.Meetings[1].Phone)
	}
}

func TestFindMeetingsParsesResourceSection(t *testing.T) {
	page := `<html><body>
<h2>3 Closest Local Resources</h2>
<div>Trichy Fellowship (30.00 miles)</div>
<div>Tiruchirappalli</div>
<div>Phone: 0431 2345678</div>
</body></html>`
	srv, _ := newMeetingServer(t, http.StatusOK, page)

	locator := NewMeetingLocator(&fakeGeocoder{coords: &Coordinates{Lat: 10.8, Lng: 78.7}}, srv.URL)
	result := locator.FindMeetings(context.Background(), "Trichy")

	if len(result.Meetings) != 1 {
		t.Fatalf("expected one meeting, got %#v", result.Meetings)
	}
	got := result.Meetings[0]
	if got.Name != "Trichy Fellowship" || got.Location != "Tiruchirappalli" || got.Phone != "0431 2345678" {
		t.Fatalf("unexpected meeting: %#v", got)
	}
}

func TestFindMeetingsFallsBack(t *testing.T) {
	tests := []struct {
		name     string
		geocoder *fakeGeocoder
		status   int
		body     string
		wantURL  bool
	}{
		{name: "geocode failure", geocoder: &fakeGeocoder{err: ErrLocationNotFound}, status: http.StatusOK},
		{name: "page error", geocoder: &fakeGeocoder{coords: &Coordinates{Lat: 1, Lng: 2}}, status: http.StatusBadGateway, wantURL: true},
		{name: "nothing parsed", geocoder: &fakeGeocoder{coords: &Coordinates{Lat: 1, Lng: 2}}, status: http.StatusOK, body: "<p>empty</p>", wantURL: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newMeetingServer(t, tt.status, tt.body)
			locator := NewMeetingLocator(tt.geocoder, srv.URL)

			result := locator.FindMeetings(context.Background(), "")
			if result.Location != DefaultMeetingLocation {
				t.Fatalf("expected default location, got %q", result.Location)
			}
			if result.Source != MeetingSourceFallback || result.Warning == "" {
				t.Fatalf("expected fallback with warning, got %#v", result)
			}
			if len(result.Meetings) != 3 || result.Meetings[0].Name != "Chennai Intergroup" {
				t.Fatalf("unexpected fallback meetings: %#v", result.Meetings)
			}
			if tt.wantURL != (result.URL != "") {
				t.Fatalf("unexpected url %q", result.URL)
			}
		})
	}
}

func TestNominatimGeocoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("q") == "Nowhere, India" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[{"lat":"13.0129745","lon":"80.1735565","display_name":"Chennai"}]`))
	}))
	defer srv.Close()

	geocoder := NewNominatimGeocoder(srv.URL + "/")

	coords, err := geocoder.Geocode(context.Background(), "Chennai, India")
	if err != nil {
		t.Fatalf("geocode failed: %v", err)
	}
	if coords.Lat != 13.0129745 || coords.Lng != 80.1735565 {
		t.Fatalf("unexpected coordinates %#v", coords)
	}

	if _, err := geocoder.Geocode(context.Background(), "Nowhere, India"); !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
