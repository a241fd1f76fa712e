package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/covid-dashboard/internal/covid"
)

const historicalNorway = `{
  "country": "Norway",
  "province": ["mainland"],
  "timeline": {
    "cases": {"2/26/20": 1, "2/25/20": 0, "2/27/20": 1},
    "deaths": {"2/25/20": 0, "2/26/20": 0, "2/27/20": 0},
    "recovered": {"2/25/20": 0, "2/26/20": 0, "2/27/20": 0}
  }
}`

const countriesBody = `[
  {"country": "Norway", "cases": 100, "deaths": 2, "critical": 1, "recovered": 50,
   "countryInfo": {"_id": 578, "iso2": "NO", "iso3": "NOR", "flag": "https://disease.sh/assets/img/flags/no.png"}},
  {"country": "Sweden", "cases": 200, "deaths": 5, "critical": 3, "recovered": 70,
   "countryInfo": {"_id": 752, "iso2": "SE", "iso3": "SWE", "flag": "https://disease.sh/assets/img/flags/se.png"}}
]`

func newTestProvider(t *testing.T, handler http.HandlerFunc) *DiseaseShProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewDiseaseShProvider(srv.Client(), srv.URL+"/", "30", DefaultBreakerConfig())
}

func TestHistoricalDecodesTimeline(t *testing.T) {
	var gotPath, gotQuery string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("lastdays")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(historicalNorway))
	})

	h, err := p.Historical(context.Background(), "Norway")
	require.NoError(t, err)

	assert.Equal(t, "/historical/Norway", gotPath)
	assert.Equal(t, "30", gotQuery)
	assert.Equal(t, "Norway", h.Country)
	require.NotNil(t, h.Timeline)
	assert.Len(t, h.Timeline.Cases, 3)
	assert.Equal(t, int64(1), h.Timeline.Cases["2/26/20"])
}

func TestHistoricalWithoutTimeline(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"country": "Atlantis"}`))
	})

	h, err := p.Historical(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.Nil(t, h.Timeline)
}

func TestHistoricalEscapesCountry(t *testing.T) {
	var gotPath string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := p.Historical(context.Background(), "South Korea")
	require.NoError(t, err)
	assert.Equal(t, "/historical/South%20Korea", gotPath)
}

func TestNotFoundMapsToSentinel(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Country not found or doesn't have any historical data"}`))
	})

	_, err := p.Historical(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, covid.ErrNotFound)

	_, err = p.Country(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, covid.ErrNotFound)
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, errRateLimited},
		{"server error", http.StatusBadGateway, errServerError},
		{"unexpected", http.StatusTeapot, errUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := p.Countries(context.Background())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCountriesDecodesSummaries(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/countries", r.URL.Path)
		_, _ = w.Write([]byte(countriesBody))
	})

	countries, err := p.Countries(context.Background())
	require.NoError(t, err)
	require.Len(t, countries, 2)

	no := countries[0]
	assert.Equal(t, "Norway", no.Country)
	assert.Equal(t, int64(100), no.Cases)
	assert.Equal(t, int64(2), no.Deaths)
	assert.Equal(t, int64(1), no.Critical)
	assert.Equal(t, "NOR", no.CountryInfo.Iso3)
	assert.Equal(t, "https://disease.sh/assets/img/flags/no.png", no.CountryInfo.Flag)
}

func TestCountryDecodesSingleSummary(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/countries/usa", r.URL.Path)
		_, _ = w.Write([]byte(`{"country": "USA", "cases": 5000, "countryInfo": {"iso3": "USA"}}`))
	})

	s, err := p.Country(context.Background(), "usa")
	require.NoError(t, err)
	assert.Equal(t, "USA", s.Country)
	assert.Equal(t, int64(5000), s.Cases)
}

func TestMalformedBody(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"country": `))
	})

	_, err := p.Country(context.Background(), "Norway")
	assert.Error(t, err)
}

func TestCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	p := NewDiseaseShProvider(srv.Client(), srv.URL, "", BreakerConfig{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		TripAfter:   2,
	})

	for i := 0; i < 2; i++ {
		_, err := p.Countries(context.Background())
		assert.ErrorIs(t, err, errServerError)
	}

	_, err := p.Countries(context.Background())
	assert.ErrorIs(t, err, errCircuitOpen)
	assert.Equal(t, int32(2), hits.Load())
}

func TestUnknownCountryDoesNotTripCircuit(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	p.circuit = newBreaker("test", BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, TripAfter: 1})

	for i := 0; i < 3; i++ {
		_, err := p.Historical(context.Background(), "Atlantis")
		assert.ErrorIs(t, err, covid.ErrNotFound)
	}
}

func TestCancelledFetchesDoNotTripCircuit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/historical/", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	mux.HandleFunc("/countries", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(countriesBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p := NewDiseaseShProvider(srv.Client(), srv.URL, "", BreakerConfig{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		TripAfter:   2,
	})

	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)

		_, err := p.Historical(ctx, "Sweden")
		assert.ErrorIs(t, err, context.Canceled)
		cancel()
	}

	countries, err := p.Countries(context.Background())
	require.NoError(t, err)
	assert.Len(t, countries, 2)
}

func TestCancelledContext(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Countries(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNoHTTPClient(t *testing.T) {
	p := NewDiseaseShProvider(nil, "", "", DefaultBreakerConfig())
	assert.Equal(t, DefaultBaseURL, p.baseURL)

	_, err := p.Countries(context.Background())
	assert.ErrorIs(t, err, errNoHTTPClient)
}
