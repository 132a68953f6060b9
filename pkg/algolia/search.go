package algolia

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/buger/jsonparser"

	"github.com/usestring/algolia-codegen/pkg/jsonvalue"
)

// DefaultHitsPerPage is the sample size requested by FetchSamples when
// hitsPerPage is not positive.
const DefaultHitsPerPage = 20

const queriesPath = "/1/indexes/*/queries"

// SearchHits runs a single query against indexName via the multi-query
// endpoint and returns the hits of its result in response order.
func (c *Client) SearchHits(ctx context.Context, indexName string, params url.Values) ([]*jsonvalue.Object, error) {
	payload := multiQueryRequest{
		Requests: []SearchRequest{{IndexName: indexName, Params: params.Encode()}},
	}

	body, err := c.read(ctx, http.MethodPost, queriesPath, payload)
	if err != nil {
		return nil, err
	}
	return decodeHits(body, indexName)
}

// FetchSamples returns up to hitsPerPage records of indexName for an empty
// query.
func (c *Client) FetchSamples(ctx context.Context, indexName string, hitsPerPage int) ([]*jsonvalue.Object, error) {
	if hitsPerPage <= 0 {
		hitsPerPage = DefaultHitsPerPage
	}
	params := url.Values{}
	params.Set("query", "")
	params.Set("hitsPerPage", strconv.Itoa(hitsPerPage))
	return c.SearchHits(ctx, indexName, params)
}

func decodeHits(body []byte, indexName string) ([]*jsonvalue.Object, error) {
	_, _, _, err := jsonparser.Get(body, "results", "[0]")
	if errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return nil, fmt.Errorf("%w: %s", ErrNoResults, indexName)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	raw, dataType, _, err := jsonparser.Get(body, "results", "[0]", "hits")
	if errors.Is(err, jsonparser.KeyPathNotFoundError) || dataType != jsonparser.Array {
		return nil, fmt.Errorf("%w: %s", ErrNoHits, indexName)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	var hits []*jsonvalue.Object
	var decodeErr error
	_, err = jsonparser.ArrayEach(raw, func(value []byte, dt jsonparser.ValueType, _ int, err error) {
		if decodeErr != nil || dt != jsonparser.Object {
			return
		}
		hit, err := jsonvalue.DecodeObject(value)
		if err != nil {
			decodeErr = err
			return
		}
		hits = append(hits, hit)
	})
	if err == nil {
		err = decodeErr
	}
	if err != nil {
		return nil, fmt.Errorf("decoding hits: %w", err)
	}
	if len(hits) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoHits, indexName)
	}
	return hits, nil
}

// ObjectIDs returns the objectID of every hit, or "N/A" where absent.
func ObjectIDs(hits []*jsonvalue.Object) []string {
	ids := make([]string, len(hits))
	for i, hit := range hits {
		ids[i] = "N/A"
		if v, ok := hit.Get("objectID"); ok {
			if s, ok := v.(string); ok && s != "" {
				ids[i] = s
			}
		}
	}
	return ids
}
