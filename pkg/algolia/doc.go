// Package algolia provides a minimal Go client for the Algolia Search REST API.
//
// The client covers what type generation needs: a multi-query search issued
// against an ordered list of read hosts with failover. Hits are decoded with
// their key order intact so that generated declarations follow the shape of
// the stored records.
//
// # Quick Start
//
//	c, err := algolia.New(appID, searchKey)
//	if err != nil {
//	    return err
//	}
//	hits, err := c.FetchSamples(ctx, "products", 20)
//
// Use custom hosts and timeouts:
//
//	c, err := algolia.New(appID, searchKey,
//	    algolia.WithHosts([]algolia.Host{{URL: "search.example.com", Accept: algolia.AcceptRead}}),
//	    algolia.WithTimeouts(5*time.Second, 15*time.Second),
//	)
//
// # Failover
//
// Without custom hosts the client tries {appId}-dsn.algolia.net first and then
// {appId}-1.algolianet.com through {appId}-3.algolianet.com. Network errors,
// per-attempt timeouts and 5xx responses move on to the next host; 4xx
// responses are returned immediately as *APIError.
package algolia
