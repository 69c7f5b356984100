// Package congressapi talks to the upstream congress REST API.
package congressapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/congress-dashboard/internal/domain"
	"github.com/couchcryptid/congress-dashboard/internal/observability"
)

const topicCountsResource = "ideology_topic_counts"

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("congress API error: status %d: %s", e.Code, e.Body)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// Client fetches raw reference payloads and topic counts.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch returns the body of res. Any status other than 200 is a *StatusError.
func (c *Client) Fetch(ctx context.Context, res domain.Resource) ([]byte, error) {
	start := time.Now()
	status, body, err := c.get(ctx, c.baseURL+res.Path)
	c.metrics.UpstreamDuration.WithLabelValues(res.Key).Observe(time.Since(start).Seconds())
	if err == nil && status != http.StatusOK {
		err = &StatusError{Code: status, Body: truncate(body)}
	}
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(res.Key, "error").Inc()
		return nil, fmt.Errorf("fetch %s: %w", res.Path, err)
	}
	c.metrics.UpstreamRequests.WithLabelValues(res.Key, "success").Inc()
	c.logger.Debug("fetched upstream resource", "resource", res.Key, "bytes", len(body))
	return body, nil
}

// TopicCounts fetches the per-state counts for topic. A 202 means upstream
// has started computing them and yields a pending, empty result; a 404 or an
// empty list yields an empty result.
func (c *Client) TopicCounts(ctx context.Context, topic string) (domain.TopicCounts, error) {
	out := domain.TopicCounts{Topic: topic, Counts: []domain.IdeologyCount{}}

	start := time.Now()
	status, body, err := c.get(ctx, c.baseURL+"/api/ideology_data_by_topic/"+url.PathEscape(topic))
	c.metrics.UpstreamDuration.WithLabelValues(topicCountsResource).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(topicCountsResource, "error").Inc()
		return out, fmt.Errorf("topic counts request: %w", err)
	}

	switch status {
	case http.StatusOK:
	case http.StatusAccepted:
		c.metrics.UpstreamRequests.WithLabelValues(topicCountsResource, "pending").Inc()
		out.Pending = true
		out.Message = domain.TopicMessagePending
		return out, nil
	case http.StatusNotFound:
		c.metrics.UpstreamRequests.WithLabelValues(topicCountsResource, "success").Inc()
		out.Message = domain.TopicMessageNoData
		return out, nil
	default:
		c.metrics.UpstreamRequests.WithLabelValues(topicCountsResource, "error").Inc()
		return out, &StatusError{Code: status, Body: truncate(body)}
	}

	c.metrics.UpstreamRequests.WithLabelValues(topicCountsResource, "success").Inc()
	var counts []domain.IdeologyCount
	if err := json.Unmarshal(body, &counts); err != nil {
		return out, fmt.Errorf("decode topic counts: %w", err)
	}
	if len(counts) == 0 {
		out.Message = domain.TopicMessageNoData
		return out, nil
	}
	out.Counts = domain.SortCounts(counts)
	return out, nil
}

func (c *Client) get(ctx context.Context, fullURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func truncate(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
