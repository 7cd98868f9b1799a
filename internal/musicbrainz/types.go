package musicbrainz

// Credit is one entry of an artist credit.
type Credit struct {
	Name       string `json:"name"`
	JoinPhrase string `json:"joinphrase"`
	Artist     struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artist"`
}

// Artist is an artist search result.
type Artist struct {
	ID             string `json:"id"`
	Score          int    `json:"score"`
	Name           string `json:"name"`
	SortName       string `json:"sort-name"`
	Type           string `json:"type"`
	Country        string `json:"country"`
	Disambiguation string `json:"disambiguation"`
}

// ReleaseGroupRef is the release group embedded in a release.
type ReleaseGroupRef struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	PrimaryType string `json:"primary-type"`
}

// Release is a release search result.
type Release struct {
	ID           string          `json:"id"`
	Score        int             `json:"score"`
	Title        string          `json:"title"`
	Status       string          `json:"status"`
	Date         string          `json:"date"`
	Country      string          `json:"country"`
	TrackCount   int             `json:"track-count"`
	ArtistCredit []Credit        `json:"artist-credit"`
	ReleaseGroup ReleaseGroupRef `json:"release-group"`
}

// Recording is a recording search result.
type Recording struct {
	ID           string   `json:"id"`
	Score        int      `json:"score"`
	Title        string   `json:"title"`
	Length       int      `json:"length"` // milliseconds
	ArtistCredit []Credit `json:"artist-credit"`
}

// ReleaseGroup is a release group search result.
type ReleaseGroup struct {
	ID           string   `json:"id"`
	Score        int      `json:"score"`
	Title        string   `json:"title"`
	PrimaryType  string   `json:"primary-type"`
	ArtistCredit []Credit `json:"artist-credit"`
}

// Tag is a folksonomy tag with its vote count.
type Tag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CreditName renders an artist credit the way MusicBrainz displays it.
func CreditName(credits []Credit) string {
	var name string
	for _, c := range credits {
		name += c.Name + c.JoinPhrase
	}
	return name
}
