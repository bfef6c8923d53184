package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	retry "github.com/avast/retry-go/v4"
)

const defaultEndpoint = "https://graphql.anilist.co"

// Client posts GraphQL queries to the primary feed endpoint. Rate-limit and
// server-side failures are retried with backoff before surfacing; client
// errors and GraphQL-level errors are not.
type Client struct {
	httpc    *http.Client
	endpoint string
}

// NewClient creates a feed client. Empty endpoint and nil http.Client get
// defaults.
func NewClient(endpoint string, httpc *http.Client) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{httpc: httpc, endpoint: endpoint}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// post executes a query and unmarshals the response "data" payload into out.
func (c *Client) post(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return err
	}

	var data json.RawMessage
	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
				return fmt.Errorf("feed returned status %d", resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("feed returned status %d", resp.StatusCode))
			}

			var envelope struct {
				Data   json.RawMessage `json:"data"`
				Errors []graphQLError  `json:"errors"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
				return fmt.Errorf("feed decode: %w", err)
			}
			if len(envelope.Errors) > 0 {
				return retry.Unrecoverable(fmt.Errorf("feed error: %s", envelope.Errors[0].Message))
			}

			data = envelope.Data
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return err
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("feed decode: %w", err)
		}
	}
	return nil
}
