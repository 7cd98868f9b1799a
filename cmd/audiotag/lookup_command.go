package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apphttp "github.com/handiism/audiotagtools/internal/http"
	"github.com/handiism/audiotagtools/internal/musicbrainz"
)

type lookupFlags struct {
	fields map[string]string
	strict bool
	idOnly bool
}

func newLookupCommand(cc *commandContext) *cobra.Command {
	var flags lookupFlags

	lookupCmd := &cobra.Command{
		Use:   "lookup",
		Short: "Search MusicBrainz",
		Long: "Search MusicBrainz. The query is free text; --field adds field-scoped terms,\n" +
			"for example --field artist=Slowdive. --id prints only the id of the first\n" +
			"result scoring 100.",
	}
	lookupCmd.PersistentFlags().StringToStringVarP(&flags.fields, "field", "f", nil, "Field-scoped search term (key=value)")
	lookupCmd.PersistentFlags().BoolVar(&flags.strict, "strict", false, "Require every term to match")
	lookupCmd.PersistentFlags().BoolVar(&flags.idOnly, "id", false, "Print only the id of the exact match")

	lookupCmd.AddCommand(
		newLookupSearchCommand(cc, &flags, "artist", "Search artists", lookupArtists),
		newLookupSearchCommand(cc, &flags, "release", "Search releases", lookupReleases),
		newLookupSearchCommand(cc, &flags, "recording", "Search recordings", lookupRecordings),
		newLookupSearchCommand(cc, &flags, "release-group", "Search release groups", lookupReleaseGroups),
		newLookupSearchCommand(cc, &flags, "genres", "Show the genres of the release group of a release", lookupGenres),
	)
	return lookupCmd
}

// lookupFunc runs one search and returns the rendered result.
type lookupFunc func(ctx context.Context, client *musicbrainz.Client, q musicbrainz.Query, idOnly bool) (string, error)

func newLookupSearchCommand(cc *commandContext, flags *lookupFlags, use, short string, fn lookupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [query]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := musicbrainz.Query{
				Text:   strings.Join(args, " "),
				Fields: flags.fields,
				Strict: flags.strict,
			}
			if strings.TrimSpace(q.Text) == "" && len(q.Fields) == 0 {
				return fmt.Errorf("a query or --field is required")
			}
			client, err := cc.lookupClient()
			if err != nil {
				return err
			}
			out, err := fn(cmd.Context(), client, q, flags.idOnly)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func (c *commandContext) lookupClient() (*musicbrainz.Client, error) {
	settings, err := c.ensureSettings()
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(settings.Lookup.TimeoutSeconds) * time.Second
	httpClient := apphttp.NewClient(settings.Lookup.UserAgent, timeout)
	return musicbrainz.NewClient(httpClient, settings.Lookup.BaseURL, settings.Lookup.Limit), nil
}

var scoredAligns = []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}

func lookupArtists(ctx context.Context, client *musicbrainz.Client, q musicbrainz.Query, idOnly bool) (string, error) {
	if idOnly {
		return client.ArtistID(ctx, q)
	}
	artists, err := client.SearchArtists(ctx, q)
	if err != nil {
		return "", err
	}
	rows := make([][]string, 0, len(artists))
	for _, a := range artists {
		detail := strings.TrimSpace(strings.Join([]string{a.Type, a.Country, a.Disambiguation}, " "))
		rows = append(rows, []string{strconv.Itoa(a.Score), a.ID, a.Name, detail})
	}
	return renderTable([]string{"Score", "ID", "Name", "Detail"}, rows, scoredAligns), nil
}

func lookupReleases(ctx context.Context, client *musicbrainz.Client, q musicbrainz.Query, idOnly bool) (string, error) {
	if idOnly {
		return client.ReleaseID(ctx, q)
	}
	releases, err := client.SearchReleases(ctx, q)
	if err != nil {
		return "", err
	}
	rows := make([][]string, 0, len(releases))
	for _, r := range releases {
		rows = append(rows, []string{strconv.Itoa(r.Score), r.ID, r.Title, musicbrainz.CreditName(r.ArtistCredit), r.Date})
	}
	return renderTable([]string{"Score", "ID", "Title", "Artist", "Date"}, rows, scoredAligns), nil
}

func lookupRecordings(ctx context.Context, client *musicbrainz.Client, q musicbrainz.Query, idOnly bool) (string, error) {
	if idOnly {
		return client.RecordingID(ctx, q)
	}
	recordings, err := client.SearchRecordings(ctx, q)
	if err != nil {
		return "", err
	}
	rows := make([][]string, 0, len(recordings))
	for _, r := range recordings {
		length := ""
		if r.Length > 0 {
			length = (time.Duration(r.Length) * time.Millisecond).Round(time.Second).String()
		}
		rows = append(rows, []string{strconv.Itoa(r.Score), r.ID, r.Title, musicbrainz.CreditName(r.ArtistCredit), length})
	}
	return renderTable([]string{"Score", "ID", "Title", "Artist", "Length"}, rows, scoredAligns), nil
}

func lookupReleaseGroups(ctx context.Context, client *musicbrainz.Client, q musicbrainz.Query, idOnly bool) (string, error) {
	if idOnly {
		return client.ReleaseGroupID(ctx, q)
	}
	groups, err := client.SearchReleaseGroups(ctx, q)
	if err != nil {
		return "", err
	}
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{strconv.Itoa(g.Score), g.ID, g.Title, musicbrainz.CreditName(g.ArtistCredit), g.PrimaryType})
	}
	return renderTable([]string{"Score", "ID", "Title", "Artist", "Type"}, rows, scoredAligns), nil
}

// lookupGenres resolves the release group of the exact release match and
// lists its genres, most voted first.
func lookupGenres(ctx context.Context, client *musicbrainz.Client, q musicbrainz.Query, _ bool) (string, error) {
	id, err := client.ReleaseGroupID(ctx, q)
	if err != nil {
		return "", err
	}
	genres, err := client.ReleaseGroupGenres(ctx, id)
	if err != nil {
		return "", err
	}
	if len(genres) == 0 {
		return "No genres tagged", nil
	}
	return strings.Join(genres, "|"), nil
}
