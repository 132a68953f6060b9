package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/usestring/algolia-codegen/internal/cache"
	"github.com/usestring/algolia-codegen/internal/config"
	"github.com/usestring/algolia-codegen/pkg/algolia"
	"github.com/usestring/algolia-codegen/pkg/jsonvalue"
)

// fakeSource serves canned hits per index.
type fakeSource struct {
	mu    sync.Mutex
	hits  map[string][]string
	errs  map[string]error
	calls map[string]int
}

func newFakeSource(hits map[string][]string) *fakeSource {
	return &fakeSource{hits: hits, errs: map[string]error{}, calls: map[string]int{}}
}

func (s *fakeSource) FetchSamples(ctx context.Context, g config.Generator) ([]*jsonvalue.Object, error) {
	s.mu.Lock()
	s.calls[g.IndexName]++
	err := s.errs[g.IndexName]
	docs := s.hits[g.IndexName]
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	out := make([]*jsonvalue.Object, 0, len(docs))
	for _, doc := range docs {
		obj, err := jsonvalue.DecodeObject([]byte(doc))
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

func (s *fakeSource) callCount(index string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[index]
}

func configFile(overwrite bool, outputs config.Outputs) *config.File {
	return &config.File{Overwrite: overwrite, Generates: config.Generates{outputs}}
}

func generator(index string) config.Generator {
	return config.Generator{AppID: "APP", SearchKey: "key", IndexName: index}
}

const productsHeader = "/**\n" +
	" * Generated TypeScript types for Algolia index: products\n" +
	" * This file is auto-generated. Do not edit manually.\n" +
	" */\n"

func TestRunner_WritesFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	src := newFakeSource(map[string][]string{
		"products": {`{"objectID": "1", "name": "Tent", "price": 10}`},
		"articles": {`{"objectID": "a", "title": "Hello"}`},
	})

	f := configFile(false, config.Outputs{
		"types/products.ts": generator("products"),
		"types/nested/articles.ts": func() config.Generator {
			g := generator("articles")
			g.Prefix = "Blog"
			return g
		}(),
	})

	results, err := NewRunner(src, Options{BaseDir: dir, Workers: 2}).Run(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "types/nested/articles.ts", results[0].Path, "targets keep config order")
	assert.Equal(t, StatusWritten, results[0].Status)
	assert.Equal(t, []string{"BlogHit"}, results[0].Types)

	data, err := os.ReadFile(filepath.Join(dir, "types", "products.ts"))
	require.NoError(t, err)

	want := productsHeader + `
/**
 * Hit structure in Algolia
 */
export interface Hit {
  name: string;
  objectID: string;
  price: number;
}
`
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("products.ts mismatch (-want +got):\n%s", diff)
	}

	info, err := os.Stat(filepath.Join(dir, "types", "nested", "articles.ts"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestRunner_ExistingFileWithoutOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hit.ts")
	require.NoError(t, os.WriteFile(path, []byte("keep"), 0o644))

	src := newFakeSource(map[string][]string{"products": {`{"objectID": "1"}`}})
	f := configFile(false, config.Outputs{"hit.ts": generator("products")})

	results, err := NewRunner(src, Options{BaseDir: dir}).Run(context.Background(), f)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFileExists)
	assert.Contains(t, err.Error(), path)
	assert.Equal(t, StatusFailed, results[0].Status)
	assert.Zero(t, src.callCount("products"), "no fetch before the overwrite check")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}

func TestRunner_OverwriteReplacesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hit.ts")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	src := newFakeSource(map[string][]string{"products": {`{"objectID": "1"}`}})

	_, err := NewRunner(src, Options{BaseDir: dir}).Run(context.Background(),
		configFile(true, config.Outputs{"hit.ts": generator("products")}))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))
	_, err = NewRunner(src, Options{BaseDir: dir, Overwrite: true}).Run(context.Background(),
		configFile(false, config.Outputs{"hit.ts": generator("products")}))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "export interface Hit {")
}

func TestRunner_DryRun(t *testing.T) {
	dir := t.TempDir()
	src := newFakeSource(map[string][]string{"products": {`{"objectID": "1"}`}})

	results, err := NewRunner(src, Options{BaseDir: dir, DryRun: true}).Run(context.Background(),
		configFile(false, config.Outputs{"out/hit.ts": generator("products")}))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StatusDryRun, results[0].Status)
	assert.Contains(t, results[0].Source, "objectID: string;")

	_, err = os.Stat(filepath.Join(dir, "out"))
	assert.True(t, os.IsNotExist(err), "dry run creates nothing")
}

func TestRunner_FetchErrorIsWrapped(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	src := newFakeSource(map[string][]string{"articles": {`{"objectID": "a"}`}})
	src.errs["products"] = &algolia.APIError{StatusCode: 403, Message: "Invalid Application-ID or API key"}

	f := configFile(false, config.Outputs{
		"a.ts": generator("articles"),
		"p.ts": generator("products"),
	})

	results, err := NewRunner(src, Options{BaseDir: dir}).Run(context.Background(), f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `p.ts: fetching data from Algolia index "products" (App ID: APP): algolia API error 403: Invalid Application-ID or API key`)

	var apiErr *algolia.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.StatusCode)

	require.Len(t, results, 2)
	assert.Equal(t, StatusWritten, results[0].Status, "other targets still run")
	assert.Equal(t, StatusFailed, results[1].Status)
	assert.FileExists(t, filepath.Join(dir, "a.ts"))
}

func TestRunner_Transform(t *testing.T) {
	dir := t.TempDir()
	src := newFakeSource(map[string][]string{"products": {
		`{"objectID": "1", "name": "Tent", "_highlightResult": {"name": {"value": "Tent"}}}`,
	}})

	g := generator("products")
	g.Transform = "del(._highlightResult)"

	results, err := NewRunner(src, Options{BaseDir: dir, DryRun: true}).Run(context.Background(),
		configFile(false, config.Outputs{"hit.ts": g}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Hit"}, results[0].Types)
	assert.NotContains(t, results[0].Source, "_highlightResult")

	g.Transform = ".name"
	_, err = NewRunner(src, Options{BaseDir: dir, DryRun: true}).Run(context.Background(),
		configFile(false, config.Outputs{"hit.ts": g}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transform produced no objects")

	g.Transform = ".name |"
	before := src.callCount("products")
	_, err = NewRunner(src, Options{BaseDir: dir, DryRun: true}).Run(context.Background(),
		configFile(false, config.Outputs{"hit.ts": g}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid jq expression")
	assert.Equal(t, before, src.callCount("products"), "invalid filters fail before fetching")
}

func TestRunner_TargetFilters(t *testing.T) {
	dir := t.TempDir()
	src := newFakeSource(map[string][]string{
		"products": {`{"objectID": "1"}`},
		"articles": {`{"objectID": "a"}`},
	})
	f := configFile(false, config.Outputs{
		"src/types/products.ts":  generator("products"),
		"docs/types/articles.ts": generator("articles"),
	})

	results, err := NewRunner(src, Options{BaseDir: dir, DryRun: true, Targets: []string{"src/**/*.ts"}}).Run(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "src/types/products.ts", results[0].Path)
	assert.Zero(t, src.callCount("articles"))

	results, err = NewRunner(src, Options{BaseDir: dir, Targets: []string{"nothing/*.ts"}}).Run(context.Background(), f)
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = NewRunner(src, Options{BaseDir: dir, Targets: []string{"src/[.ts"}}).Run(context.Background(), f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid target pattern")
}

func TestRunner_ArrayFormOrderAndParallelism(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	hits := map[string][]string{}
	var outputs config.Generates
	for i := 0; i < 12; i++ {
		index := fmt.Sprintf("index%02d", i)
		hits[index] = []string{fmt.Sprintf(`{"objectID": "%d"}`, i)}
		outputs = append(outputs, config.Outputs{index + ".ts": generator(index)})
	}
	src := newFakeSource(hits)

	results, err := NewRunner(src, Options{BaseDir: dir, Workers: 3}).Run(context.Background(),
		&config.File{Generates: outputs})
	require.NoError(t, err)
	require.Len(t, results, 12)
	for i, res := range results {
		assert.Equal(t, fmt.Sprintf("index%02d.ts", i), res.Path)
		assert.Equal(t, StatusWritten, res.Status)
	}
}

func algoliaServer(t *testing.T, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"indexName":"products"`)
		assert.Equal(t, "APP", r.Header.Get("X-Algolia-Application-Id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": [{"hits": [
			{"objectID": "1", "name": "Tent", "store": {"city": "Oslo"}},
			{"objectID": "2", "name": "Stove", "tags": ["camp"]}
		]}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAlgoliaSource_EndToEnd(t *testing.T) {
	var requests atomic.Int32
	srv := algoliaServer(t, &requests)

	c, err := cache.NewSampleCache(8)
	require.NoError(t, err)
	source := NewAlgoliaSource(c, SourceOptions{HTTPClient: srv.Client()})

	g := generator("products")
	g.Hosts = []config.Host{{URL: srv.URL, Accept: "read", Protocol: "http"}}
	g.Prefix = "Algolia"

	dir := t.TempDir()
	f := configFile(false, config.Outputs{"a.ts": g, "b.ts": g})

	results, err := NewRunner(source, Options{BaseDir: dir, Workers: 2}).Run(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int32(1), requests.Load(), "targets sharing an index share one fetch")
	assert.Equal(t, []string{"AlgoliaStore", "AlgoliaHit"}, results[0].Types)
	assert.Equal(t, 2, results[0].SampleCount)
	assert.Contains(t, results[1].Source, "  tags: string[];\n")
}

func TestAlgoliaSource_MissingCredentials(t *testing.T) {
	source := NewAlgoliaSource(nil, SourceOptions{})
	_, err := source.FetchSamples(context.Background(), config.Generator{IndexName: "products"})
	assert.True(t, errors.Is(err, algolia.ErrMissingCredentials))
}
