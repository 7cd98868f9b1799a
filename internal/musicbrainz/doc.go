// Package musicbrainz searches the MusicBrainz web service.
//
// Searches return ranked candidates. The *ID helpers return the first
// candidate with a perfect score of 100, or ErrNoMatch:
//
//	mb := musicbrainz.NewClient(http.NewClient(ua, 30*time.Second), "", 10)
//	id, err := mb.ReleaseGroupID(ctx, musicbrainz.Query{
//	    Text:   "Toxicity",
//	    Fields: map[string]string{"artist": "System of a Down", "country": "US"},
//	    Strict: true,
//	})
//	genres, err := mb.ReleaseGroupGenres(ctx, id)
//
// The lookup is a front-end helper; the conversion pipeline never calls
// it.
package musicbrainz
