// Package standards fetches industry benchmark figures (rent, utilities,
// labor, cap rate) for a location, used to ground analysis prompts and
// expense validation.
package standards

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/deal-analyzer/internal/model"
)

// DefaultBaseURL points at the hosted benchmark service.
const DefaultBaseURL = "https://api.laundrybenchmarks.com/v1"

// Client looks up benchmark data for a postal code.
type Client interface {
	// Lookup returns the benchmark context for a 5-digit ZIP code.
	// A nil context with a nil error means the service has no data
	// for that location.
	Lookup(ctx context.Context, zip string) (*model.StandardsContext, error)
}

// Option configures the HTTP client.
type Option func(*httpClient)

// WithBaseURL overrides the benchmark service base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *httpClient) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit for lookup calls.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

type httpClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a benchmark lookup client with the given options.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// lookupResponse is the wire format of the benchmark service.
type lookupResponse struct {
	Location   string `json:"location"`
	Benchmarks struct {
		RentPct          *model.Range `json:"rent_pct"`
		UtilitiesPct     *model.Range `json:"utilities_pct"`
		LaborPct         *model.Range `json:"labor_pct"`
		CapRate          *model.Range `json:"cap_rate"`
		NOIMultiple      *model.Range `json:"noi_multiple"`
		AncillaryRevenue *model.Range `json:"ancillary_revenue"`
	} `json:"benchmarks"`
}

func (c *httpClient) Lookup(ctx context.Context, zip string) (*model.StandardsContext, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "standards: rate limit wait")
	}

	u := fmt.Sprintf("%s/benchmarks?zip=%s", c.baseURL, url.QueryEscape(zip))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, eris.Wrap(err, "standards: build request")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "standards: lookup %s", zip)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("standards: lookup %s: status %d", zip, resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, eris.Wrapf(err, "standards: decode response for %s", zip)
	}

	return &model.StandardsContext{
		Location:         body.Location,
		RentPct:          body.Benchmarks.RentPct,
		UtilitiesPct:     body.Benchmarks.UtilitiesPct,
		LaborPct:         body.Benchmarks.LaborPct,
		CapRate:          body.Benchmarks.CapRate,
		NOIMultiple:      body.Benchmarks.NOIMultiple,
		AncillaryRevenue: body.Benchmarks.AncillaryRevenue,
	}, nil
}
