package musicbrainz

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	apphttp "github.com/handiism/audiotagtools/internal/http"
)

// DefaultBaseURL is the public web service.
const DefaultBaseURL = "https://musicbrainz.org/ws/2"

// PerfectScore marks an exact search hit.
const PerfectScore = 100

// ErrNoMatch is returned by the ID helpers when no result scores 100.
var ErrNoMatch = errors.New("no exact match")

// Query is a search. Text is searched in the entity's default field;
// Fields adds field:value terms, joined with AND when Strict.
type Query struct {
	Text   string
	Fields map[string]string
	Strict bool
}

// Lucene renders the query in the web service's search syntax.
func (q Query) Lucene() string {
	var terms []string
	if t := strings.TrimSpace(q.Text); t != "" {
		terms = append(terms, quote(t))
	}
	keys := make([]string, 0, len(q.Fields))
	for k := range q.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := strings.TrimSpace(q.Fields[k]); v != "" {
			terms = append(terms, k+":"+quote(v))
		}
	}
	sep := " "
	if q.Strict {
		sep = " AND "
	}
	return strings.Join(terms, sep)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// Client searches MusicBrainz.
type Client struct {
	http    *apphttp.Client
	baseURL string
	limit   int
}

// NewClient creates a Client. An empty baseURL means DefaultBaseURL; a
// non-positive limit means 25.
func NewClient(httpClient *apphttp.Client, baseURL string, limit int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if limit <= 0 {
		limit = 25
	}
	return &Client{http: httpClient, baseURL: strings.TrimRight(baseURL, "/"), limit: limit}
}

// SearchArtists searches artists.
func (c *Client) SearchArtists(ctx context.Context, q Query) ([]Artist, error) {
	var page struct {
		Artists []Artist `json:"artists"`
	}
	err := c.search(ctx, "artist", q, &page)
	return page.Artists, err
}

// SearchReleases searches releases.
func (c *Client) SearchReleases(ctx context.Context, q Query) ([]Release, error) {
	var page struct {
		Releases []Release `json:"releases"`
	}
	err := c.search(ctx, "release", q, &page)
	return page.Releases, err
}

// SearchRecordings searches recordings.
func (c *Client) SearchRecordings(ctx context.Context, q Query) ([]Recording, error) {
	var page struct {
		Recordings []Recording `json:"recordings"`
	}
	err := c.search(ctx, "recording", q, &page)
	return page.Recordings, err
}

// SearchReleaseGroups searches release groups.
func (c *Client) SearchReleaseGroups(ctx context.Context, q Query) ([]ReleaseGroup, error) {
	var page struct {
		ReleaseGroups []ReleaseGroup `json:"release-groups"`
	}
	err := c.search(ctx, "release-group", q, &page)
	return page.ReleaseGroups, err
}

// ArtistID returns the id of the first artist scoring 100.
func (c *Client) ArtistID(ctx context.Context, q Query) (string, error) {
	artists, err := c.SearchArtists(ctx, q)
	if err != nil {
		return "", err
	}
	return firstExact(artists, func(a Artist) (int, string) { return a.Score, a.ID })
}

// ReleaseID returns the id of the first release scoring 100.
func (c *Client) ReleaseID(ctx context.Context, q Query) (string, error) {
	releases, err := c.SearchReleases(ctx, q)
	if err != nil {
		return "", err
	}
	return firstExact(releases, func(r Release) (int, string) { return r.Score, r.ID })
}

// RecordingID returns the id of the first recording scoring 100.
func (c *Client) RecordingID(ctx context.Context, q Query) (string, error) {
	recordings, err := c.SearchRecordings(ctx, q)
	if err != nil {
		return "", err
	}
	return firstExact(recordings, func(r Recording) (int, string) { return r.Score, r.ID })
}

// ReleaseGroupID searches releases and returns the release group of the
// first release scoring 100, so release fields such as country and
// tracks narrow the match.
func (c *Client) ReleaseGroupID(ctx context.Context, q Query) (string, error) {
	releases, err := c.SearchReleases(ctx, q)
	if err != nil {
		return "", err
	}
	return firstExact(releases, func(r Release) (int, string) { return r.Score, r.ReleaseGroup.ID })
}

// ReleaseGroupGenres returns the tag names of a release group, most voted
// first.
func (c *Client) ReleaseGroupGenres(ctx context.Context, releaseGroupID string) ([]string, error) {
	if strings.TrimSpace(releaseGroupID) == "" {
		return nil, errors.New("release group id is empty")
	}
	var group struct {
		Tags []Tag `json:"tags"`
	}
	endpoint := c.baseURL + "/release-group/" + url.PathEscape(releaseGroupID)
	if err := c.http.GetJSON(ctx, endpoint, url.Values{"inc": {"tags"}, "fmt": {"json"}}, &group); err != nil {
		return nil, fmt.Errorf("release group %s: %w", releaseGroupID, err)
	}
	sort.SliceStable(group.Tags, func(i, j int) bool { return group.Tags[i].Count > group.Tags[j].Count })
	names := make([]string, len(group.Tags))
	for i, t := range group.Tags {
		names[i] = t.Name
	}
	return names, nil
}

func (c *Client) search(ctx context.Context, entity string, q Query, out any) error {
	lucene := q.Lucene()
	if lucene == "" {
		return errors.New("empty query")
	}
	params := url.Values{
		"query": {lucene},
		"limit": {strconv.Itoa(c.limit)},
		"fmt":   {"json"},
	}
	if err := c.http.GetJSON(ctx, c.baseURL+"/"+entity, params, out); err != nil {
		return fmt.Errorf("search %s: %w", entity, err)
	}
	return nil
}

func firstExact[T any](results []T, key func(T) (int, string)) (string, error) {
	for _, r := range results {
		if score, id := key(r); score == PerfectScore && id != "" {
			return id, nil
		}
	}
	return "", ErrNoMatch
}
