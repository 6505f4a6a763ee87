// Package cluster provides the HTTP/JSON helpers samnode and samctl use
// to talk to each other. See doc.go for complete package documentation.
package cluster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// NodeInfo identifies a samnode and reports its health, the payload
// exchanged by the /health endpoint.
//
// NodeInfo instances are used for:
//   - Health check targeting (samctl polling a samnode's /health)
//   - Reporting a node's own identity and status in a /health response
//
// Thread Safety:
// NodeInfo is safe for concurrent read access once initialized.
// Modifications should be protected by external synchronization.
//
// Example:
//
//	node := &NodeInfo{
//	    ID:   "node-1",
//	    Addr: "192.168.1.10:8081",
//	}
type NodeInfo struct {
	// LastHealthCheck records when the node was last checked.
	// Zero value indicates the node has never been health checked.
	LastHealthCheck time.Time `json:"last_health_check,omitempty"`

	// ID is the unique identifier for this node within the cluster.
	// It must be unique across all nodes and stable across restarts.
	// Format: typically "node-{number}" or UUID.
	// Example: "node-1", "node-2", "550e8400-e29b-41d4-a716-446655440000"
	ID string `json:"id"`

	// Addr is the network address where this node can be reached.
	// Must be accessible to samctl and to other samnodes.
	// Format: "host:port" or "ip:port"
	// Example: "localhost:8081", "192.168.1.10:8081", "node1.example.com:8081"
	Addr string `json:"addr"`

	// Status indicates the current health status of the node.
	// A node reports "healthy"; samctl list-nodes prints "unreachable"
	// or "down (<error>)" for a node whose /health check failed.
	Status string `json:"health_status"`
}

// httpClient is the shared HTTP client used for all cluster communication.
// It's configured with a 5-second timeout to prevent hanging on unresponsive
// nodes and to enable quick failure detection.
//
// Performance characteristics:
//   - Connection pooling enabled by default
//   - Maximum of 100 idle connections
//   - Idle connection timeout of 90 seconds
//   - Supports HTTP/2 when available
//
// Note: This is a package-level variable to enable connection reuse
// across multiple requests, improving performance.
var httpClient = &http.Client{Timeout: 5 * time.Second}

// PostJSON sends a JSON-encoded POST request to the specified URL and
// decodes the JSON response into the provided output structure.
//
// This is how samctl posts a compiled query.Spec to a samnode's
// /queries/{name} endpoint, handling:
//   - Request body JSON encoding
//   - Context-based cancellation
//   - Response status validation
//   - Response body JSON decoding
//
// Parameters:
//   - ctx: Context for request cancellation and timeout control.
//     Should have a deadline set for production use.
//   - url: Complete URL to send the request to.
//     Example: "http://node1:8081/queries/watering-hole"
//   - body: Go structure to be JSON-encoded as request body.
//     Must be JSON-serializable (exported fields, valid types).
//   - out: Pointer to structure for JSON response decoding.
//     Pass nil if response body should be ignored.
//
// Returns:
//   - nil on success (HTTP 2xx status and successful decode if out != nil)
//   - Error on failure, which may be:
//   - JSON marshaling error (invalid body structure)
//   - Network error (connection failure, timeout)
//   - HTTP error (non-2xx status code)
//   - JSON unmarshaling error (invalid response format)
//
// Thread Safety:
// This function is thread-safe and can be called concurrently.
// The shared httpClient handles connection pooling safely.
//
// Example:
//
//	spec := query.Spec{ /* ... */ }
//	err := PostJSON(ctx, "http://node1:8081/queries/watering-hole", spec, nil)
//	if err != nil {
//	    log.Printf("query registration failed: %v", err)
//	}
func PostJSON(ctx context.Context, url string, body, out any) error {
	// Marshal request body to JSON
	reqBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	// Create HTTP request with context for cancellation
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	// Execute request using shared client
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Check for HTTP errors (status >= 300)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %s: %d", url, resp.StatusCode)
	}

	// Skip decoding if caller doesn't want response
	if out == nil {
		return nil
	}

	// Decode JSON response into output structure
	return json.NewDecoder(resp.Body).Decode(out)
}

// GetJSON sends a GET request to the specified URL and decodes the
// JSON response into the provided output structure.
//
// This function is primarily used for:
//   - Health checks (GET /health)
//   - Edge-index statistics (GET /stats)
//
// Parameters:
//   - ctx: Context for request cancellation and timeout control.
//     Should have a deadline set to prevent indefinite waits.
//   - url: Complete URL to send the request to.
//     Example: "http://node1:8081/health"
//   - out: Pointer to structure for JSON response decoding.
//     The structure should match the expected response format.
//
// Returns:
//   - nil on success (HTTP 2xx status and successful decode)
//   - Error on failure, which may be:
//   - Network error (connection failure, DNS resolution, timeout)
//   - HTTP error (non-2xx status code)
//   - JSON unmarshaling error (response doesn't match out structure)
//
// Thread Safety:
// This function is thread-safe and can be called concurrently.
// Multiple goroutines can safely make GET requests simultaneously.
//
// Performance Notes:
//   - Uses connection pooling for efficiency
//   - Streams response body (doesn't buffer entirely in memory)
//   - Suitable for responses up to several MB
//   - For large responses, consider streaming or pagination
//
// Example:
//
//	var health HealthStatus
//	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
//	defer cancel()
//	err := GetJSON(ctx, "http://node1:8081/health", &health)
//	if err != nil {
//	    log.Printf("Health check failed: %v", err)
//	}
func GetJSON(ctx context.Context, url string, out any) error {
	// Create HTTP request with context
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return err
	}

	// Execute request using shared client
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Check for HTTP errors
	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %s: %d", url, resp.StatusCode)
	}

	// Decode JSON response
	return json.NewDecoder(resp.Body).Decode(out)
}
