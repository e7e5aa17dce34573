package routing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/birdplan/backend/internal/domain"
	"github.com/birdplan/backend/internal/metrics"
)

// DefaultORSBaseURL is the public OpenRouteService endpoint.
const DefaultORSBaseURL = "https://api.openrouteservice.org"

// ProviderORS names the openrouteservice client in cache keys and metrics.
const ProviderORS = "ors"

// profiles maps travel methods to ORS routing profiles.
var profiles = map[domain.TravelMethod]string{
	domain.MethodDriving: "driving-car",
	domain.MethodWalking: "foot-walking",
	domain.MethodCycling: "cycling-regular",
}

// ORSRouter resolves travel times with the OpenRouteService directions API.
// It is safe for concurrent use.
type ORSRouter struct {
	session *http.Client
	apiKey  string
	baseURL string
	logger  *slog.Logger

	// backoff is the first retry delay; it doubles per attempt.
	backoff time.Duration
}

// NewORSRouter returns a router for the given API key. An empty baseURL
// selects DefaultORSBaseURL.
func NewORSRouter(apiKey, baseURL string, logger *slog.Logger) (*ORSRouter, error) {
	if apiKey == "" {
		return nil, errors.New("routing: ORS api key is empty")
	}
	if baseURL == "" {
		baseURL = DefaultORSBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ORSRouter{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		backoff: 200 * time.Millisecond,
	}, nil
}

type directionsRequest struct {
	Coordinates [][2]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
	} `json:"routes"`
}

// TravelTime asks ORS for the route between the two coordinates.
func (o *ORSRouter) TravelTime(ctx context.Context, req Request) (_ Result, err error) {
	if err := req.validate(); err != nil {
		return Result{}, err
	}
	profile := profiles[req.Method]

	start := time.Now()
	defer func() {
		metrics.RoutingDuration.WithLabelValues(ProviderORS).Observe(time.Since(start).Seconds())
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.RoutingRequests.WithLabelValues(ProviderORS, string(req.Method), result).Inc()
	}()

	// ORS expects [lng, lat] pairs.
	body, err := json.Marshal(directionsRequest{
		Coordinates: [][2]float64{{req.Lng1, req.Lat1}, {req.Lng2, req.Lat2}},
	})
	if err != nil {
		return Result{}, fmt.Errorf("routing.ors: encode request: %w", err)
	}
	url := fmt.Sprintf("%s/v2/directions/%s", o.baseURL, profile)

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, url, bytes.NewReader(body))
	})
	if err != nil {
		return Result{}, fmt.Errorf("routing.ors: directions %s: %w", profile, err)
	}
	defer resp.Body.Close()

	var out directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("routing.ors: decode response: %w", err)
	}
	if len(out.Routes) == 0 {
		return Result{}, ErrEmptyRoute
	}
	res := Result{
		Distance: out.Routes[0].Summary.Distance,
		Time:     out.Routes[0].Summary.Duration,
	}
	if res.Empty() {
		return Result{}, ErrEmptyRoute
	}
	return res, nil
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

func (o *ORSRouter) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Accept", "application/json, application/geo+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (o *ORSRouter) do(req *http.Request) (*http.Response, error) {
	resp, err := o.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return resp, nil
}

// doWithRetry retries network errors, 429 and 5xx responses with
// exponential backoff until maxAttempts or ctx is done.
func (o *ORSRouter) doWithRetry(ctx context.Context, makeReq func() (*http.Request, error)) (*http.Response, error) {
	const maxAttempts = 4
	backoff := o.backoff

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, err
		}

		resp, err := o.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) || attempt == maxAttempts {
			return nil, lastErr
		}
		o.logger.WarnContext(ctx, "ors request failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
	return nil, lastErr
}

func retryable(err error) bool {
	var he *httpStatusError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
