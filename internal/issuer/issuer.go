// Package issuer produces namespace-scoped kubeconfigs for a user.
package issuer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Issuer creates a kubeconfig for user bound to namespace.
type Issuer interface {
	CreateKubeconfig(ctx context.Context, user, namespace string) (string, error)
}

const createPath = "/api/create-kubeconfig"

type createRequest struct {
	Username  string `json:"username"`
	Namespace string `json:"namespace"`
}

type createResponse struct {
	Ok         bool   `json:"ok"`
	Kubeconfig string `json:"kubeconfig"`
}

// HTTPClient talks to a permission-manager style issuance endpoint.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient returns a client for baseURL. A zero timeout means no limit.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) CreateKubeconfig(ctx context.Context, user, namespace string) (string, error) {
	body, err := json.Marshal(createRequest{Username: user, Namespace: namespace})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+createPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("create kubeconfig: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("create kubeconfig: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	var out createResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if !out.Ok {
		return "", fmt.Errorf("create kubeconfig: issuer reported failure: %s", strings.TrimSpace(string(body)))
	}
	if out.Kubeconfig == "" {
		return "", fmt.Errorf("create kubeconfig: empty kubeconfig in response")
	}
	return out.Kubeconfig, nil
}
