package generator

import (
	"context"
	"net/http"
	"time"

	"github.com/usestring/algolia-codegen/internal/cache"
	"github.com/usestring/algolia-codegen/internal/config"
	"github.com/usestring/algolia-codegen/pkg/algolia"
	"github.com/usestring/algolia-codegen/pkg/jsonvalue"
)

// SampleSource fetches sample hits for a generator.
type SampleSource interface {
	FetchSamples(ctx context.Context, g config.Generator) ([]*jsonvalue.Object, error)
}

// SourceOptions configures an AlgoliaSource.
type SourceOptions struct {
	ConnectTimeout time.Duration // Used when the generator sets none
	RequestTimeout time.Duration // Used when the generator sets none
	HitsPerPage    int           // Used when the generator sets none
	HTTPClient     *http.Client  // Optional; replaces the default transport
}

// AlgoliaSource fetches samples from the Algolia Search API. Batches are
// cached per app, index, page size and host list, so generators sharing an
// index issue one request.
type AlgoliaSource struct {
	cache *cache.SampleCache
	opts  SourceOptions
}

// NewAlgoliaSource creates a source backed by c.
func NewAlgoliaSource(c *cache.SampleCache, opts SourceOptions) *AlgoliaSource {
	if opts.HitsPerPage <= 0 {
		opts.HitsPerPage = algolia.DefaultHitsPerPage
	}
	return &AlgoliaSource{cache: c, opts: opts}
}

// FetchSamples returns the first page of hits for g's index. Returned
// batches may be shared and must not be modified.
func (s *AlgoliaSource) FetchSamples(ctx context.Context, g config.Generator) ([]*jsonvalue.Object, error) {
	hitsPerPage := g.HitsPerPage
	if hitsPerPage <= 0 {
		hitsPerPage = s.opts.HitsPerPage
	}
	hosts := clientHosts(g.Hosts)

	fetch := func(ctx context.Context) ([]*jsonvalue.Object, error) {
		client, err := s.client(g, hosts)
		if err != nil {
			return nil, err
		}
		return client.FetchSamples(ctx, g.IndexName, hitsPerPage)
	}
	if s.cache == nil {
		return fetch(ctx)
	}

	key := cache.Key{
		AppID:       g.AppID,
		IndexName:   g.IndexName,
		HitsPerPage: hitsPerPage,
		Hosts:       hostKeys(hosts),
	}
	samples, _, err := s.cache.GetOrFetch(ctx, key, fetch)
	return samples, err
}

func (s *AlgoliaSource) client(g config.Generator, hosts []algolia.Host) (*algolia.Client, error) {
	connect := g.ConnectTimeout()
	if connect <= 0 {
		connect = s.opts.ConnectTimeout
	}
	request := g.RequestTimeout()
	if request <= 0 {
		request = s.opts.RequestTimeout
	}

	opts := []algolia.Option{
		algolia.WithHosts(hosts),
		algolia.WithTimeouts(connect, request),
	}
	if s.opts.HTTPClient != nil {
		opts = append(opts, algolia.WithHTTPClient(s.opts.HTTPClient))
	}
	return algolia.New(g.AppID, g.SearchKey, opts...)
}

func clientHosts(hosts []config.Host) []algolia.Host {
	out := make([]algolia.Host, len(hosts))
	for i, h := range hosts {
		out[i] = algolia.Host{
			URL:      h.URL,
			Accept:   algolia.Accept(h.Accept),
			Protocol: h.Protocol,
			Port:     h.Port,
		}
	}
	return out
}

func hostKeys(hosts []algolia.Host) []string {
	out := make([]string, len(hosts))
	for i, h := range hosts {
		out[i] = string(h.Accept) + "@" + h.BaseURL()
	}
	return out
}
