// Package http provides the HTTP client used for remote metadata lookups.
//
// The Client in this package handles:
//   - User-Agent headers (MusicBrainz rejects anonymous clients)
//   - JSON decoding of API responses
//   - Timeout handling
//
// # Basic Usage
//
//	client := http.NewClient("audiotagtools/1.0 ( me@example.com )", 30*time.Second)
//
//	var result struct{ Count int `json:"count"` }
//	err := client.GetJSON(ctx, "https://musicbrainz.org/ws/2/artist", url.Values{"query": {"Tool"}}, &result)
//
// Non-200 responses are returned as *StatusError.
package http
