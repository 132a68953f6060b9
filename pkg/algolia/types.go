package algolia

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Accept values describe which calls a host serves.
type Accept string

const (
	AcceptRead      Accept = "read"
	AcceptWrite     Accept = "write"
	AcceptReadWrite Accept = "readWrite"
)

// Host is one API endpoint.
type Host struct {
	URL      string // Hostname, or a full base URL including the scheme
	Accept   Accept // Empty means AcceptReadWrite
	Protocol string // "https" (default) or "http"
	Port     int    // Zero keeps the protocol default
}

// CanRead reports whether search requests may be sent to h.
func (h Host) CanRead() bool {
	return h.Accept == "" || h.Accept == AcceptRead || h.Accept == AcceptReadWrite
}

// BaseURL returns the scheme, host and port of h without a trailing slash.
func (h Host) BaseURL() string {
	if strings.Contains(h.URL, "://") {
		return strings.TrimSuffix(h.URL, "/")
	}
	protocol := h.Protocol
	if protocol == "" {
		protocol = "https"
	}
	host := strings.TrimSuffix(h.URL, "/")
	if h.Port > 0 {
		host += ":" + strconv.Itoa(h.Port)
	}
	return protocol + "://" + host
}

// DefaultHosts returns the read hosts Algolia assigns to appID.
func DefaultHosts(appID string) []Host {
	hosts := []Host{{URL: appID + "-dsn.algolia.net", Accept: AcceptRead}}
	for i := 1; i <= 3; i++ {
		hosts = append(hosts, Host{URL: fmt.Sprintf("%s-%d.algolianet.com", appID, i), Accept: AcceptReadWrite})
	}
	return hosts
}

// SearchRequest is one query of a multi-query search.
type SearchRequest struct {
	IndexName string `json:"indexName"`
	Params    string `json:"params"`
}

type multiQueryRequest struct {
	Requests []SearchRequest `json:"requests"`
}

var (
	// ErrMissingCredentials is returned by New when the app ID or API key is empty.
	ErrMissingCredentials = errors.New("algolia app ID and API key are required")
	// ErrNoReadHosts is returned when no configured host accepts reads.
	ErrNoReadHosts = errors.New("no read hosts configured")
	// ErrUnreachable is returned when every host failed with a retryable error.
	ErrUnreachable = errors.New("all algolia hosts unreachable")
	// ErrNoResults is returned when a search response carries no results.
	ErrNoResults = errors.New("no results found in Algolia index")
	// ErrNoHits is returned when the first result carries no hits.
	ErrNoHits = errors.New("no hits found in Algolia index")
)

// APIError represents an error response from the Algolia API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("algolia API error %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether another host may succeed.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= 500
}

// errorResponse is the JSON structure for API errors.
type errorResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}
