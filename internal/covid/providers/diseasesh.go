package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/covid-dashboard/internal/covid"
)

// DefaultBaseURL is the public disease.sh COVID-19 API.
const DefaultBaseURL = "https://disease.sh/v3/covid-19"

// DiseaseShProvider implements covid.Source for the disease.sh API.
type DiseaseShProvider struct {
	name     string
	baseURL  string
	lastDays string
	client   *http.Client
	circuit  *gobreaker.CircuitBreaker
}

// NewDiseaseShProvider creates a provider. An empty baseURL selects DefaultBaseURL and
// an empty lastDays leaves the upstream default in place.
func NewDiseaseShProvider(client *http.Client, baseURL, lastDays string, breaker BreakerConfig) *DiseaseShProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &DiseaseShProvider{
		name:     "disease.sh",
		baseURL:  strings.TrimRight(baseURL, "/"),
		lastDays: lastDays,
		client:   client,
		circuit:  newBreaker("disease.sh", breaker),
	}
}

func (p *DiseaseShProvider) Name() string {
	return p.name
}

// Historical fetches the cases/deaths/recovered timeline for one country.
func (p *DiseaseShProvider) Historical(ctx context.Context, country string) (covid.Historical, error) {
	values := url.Values{}
	if p.lastDays != "" {
		values.Set("lastdays", p.lastDays)
	}

	req, err := p.newRequest("historical/"+url.PathEscape(country), values)
	if err != nil {
		return covid.Historical{}, err
	}

	body, err := doRequest(ctx, p.client, p.circuit, req)
	if err != nil {
		return covid.Historical{}, err
	}

	var payload covid.Historical
	if err := decode(body, &payload); err != nil {
		return covid.Historical{}, err
	}
	return payload, nil
}

// Countries fetches the summary of every country.
func (p *DiseaseShProvider) Countries(ctx context.Context) ([]covid.CountrySummary, error) {
	req, err := p.newRequest("countries", nil)
	if err != nil {
		return nil, err
	}

	body, err := doRequest(ctx, p.client, p.circuit, req)
	if err != nil {
		return nil, err
	}

	var payload []covid.CountrySummary
	if err := decode(body, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Country fetches the summary of a single country.
func (p *DiseaseShProvider) Country(ctx context.Context, name string) (covid.CountrySummary, error) {
	req, err := p.newRequest("countries/"+url.PathEscape(name), nil)
	if err != nil {
		return covid.CountrySummary{}, err
	}

	body, err := doRequest(ctx, p.client, p.circuit, req)
	if err != nil {
		return covid.CountrySummary{}, err
	}

	var payload covid.CountrySummary
	if err := decode(body, &payload); err != nil {
		return covid.CountrySummary{}, err
	}
	if payload.Country == "" {
		return covid.CountrySummary{}, fmt.Errorf("%w: %s", covid.ErrNotFound, name)
	}
	return payload, nil
}

func (p *DiseaseShProvider) newRequest(path string, values url.Values) (*http.Request, error) {
	u := fmt.Sprintf("%s/%s", p.baseURL, path)
	if len(values) > 0 {
		u = fmt.Sprintf("%s?%s", u, values.Encode())
	}

	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}
