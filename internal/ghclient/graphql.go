package ghclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spiffcs/engage/internal/log"
)

const graphqlEndpoint = "https://api.github.com/graphql"

// ErrNotFound is returned when a GraphQL query resolves to a missing entity.
var ErrNotFound = errors.New("not found")

// graphqlHTTPClient is a configured HTTP client optimized for GraphQL requests
// with connection pooling and keep-alive for reduced latency.
var graphqlHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     30 * time.Second,
	},
	Timeout: 30 * time.Second,
}

// graphqlRequest represents a GraphQL request payload.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphqlResponse represents a generic GraphQL response.
type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

type graphqlError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// GraphQL executes a GraphQL query with variables and decodes the data
// payload into out. Missing entities (error type NOT_FOUND) are reported as
// ErrNotFound; out still receives whatever partial data was returned.
func (c *Client) GraphQL(ctx context.Context, query string, variables map[string]any, out any) error {
	if globalRateLimitState.IsLimited() {
		return ErrRateLimited
	}

	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal GraphQL request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, graphqlEndpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create GraphQL request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := graphqlHTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GraphQL request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	remaining, limit, resetAt := parseRateLimitHeaders(resp)
	if remaining >= 0 && limit > 0 {
		globalRateLimitState.Update(remaining, limit, resetAt)
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		if resp.Header.Get("X-RateLimit-Remaining") == "0" || resp.StatusCode == http.StatusTooManyRequests {
			globalRateLimitState.SetLimited(true, resetAt)
			return ErrRateLimited
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read GraphQL response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GraphQL request returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var gqlResp graphqlResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return fmt.Errorf("failed to parse GraphQL response: %w", err)
	}

	if out != nil && len(gqlResp.Data) > 0 {
		if err := json.Unmarshal(gqlResp.Data, out); err != nil {
			return fmt.Errorf("failed to decode GraphQL data: %w", err)
		}
	}

	if len(gqlResp.Errors) > 0 {
		return classifyGraphQLErrors(gqlResp.Errors)
	}
	return nil
}

// classifyGraphQLErrors collapses a GraphQL error list into a single Go
// error. A response consisting only of NOT_FOUND errors maps to ErrNotFound
// so callers can distinguish missing entities from real failures.
func classifyGraphQLErrors(errs []graphqlError) error {
	allNotFound := true
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Type != "NOT_FOUND" {
			allNotFound = false
		}
		msgs = append(msgs, e.Message)
		log.Debug("GraphQL error", "type", e.Type, "message", e.Message)
	}
	if allNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, strings.Join(msgs, "; "))
	}
	return fmt.Errorf("GraphQL errors: %s", strings.Join(msgs, "; "))
}
