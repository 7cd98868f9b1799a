package playlist

import (
	"fmt"
	"strings"
	"time"
)

// Format represents supported playlist file formats.
//
// Each format has different features and compatibility:
//   - M3U: Simple text format, widely supported
//   - PLS: INI-style format, used by Winamp
//   - WPL: XML format, Windows Media Player
//   - ZPL: XML format, Zune/Groove Music
type Format int

const (
	// FormatM3U creates .m3u files (most compatible).
	// Can be extended with EXTINF lines for duration/title info.
	FormatM3U Format = iota

	// FormatPLS creates .pls files (Winamp/SHOUTcast format).
	FormatPLS

	// FormatWPL creates .wpl files (Windows Media Player).
	FormatWPL

	// FormatZPL creates .zpl files (Zune/Groove Music).
	FormatZPL
)

// ParseFormat maps m3u, pls, wpl and zpl to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "m3u":
		return FormatM3U, nil
	case "pls":
		return FormatPLS, nil
	case "wpl":
		return FormatWPL, nil
	case "zpl":
		return FormatZPL, nil
	}
	return FormatM3U, fmt.Errorf("unknown playlist format %q", s)
}

// Extension returns the file extension, with the dot.
func (f Format) Extension() string {
	switch f {
	case FormatPLS:
		return ".pls"
	case FormatWPL:
		return ".wpl"
	case FormatZPL:
		return ".zpl"
	}
	return ".m3u"
}

// Entry is one playlist item. File is relative to the playlist.
type Entry struct {
	File     string
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
}

// label is "Artist - Title", falling back to whatever is known.
func (e Entry) label() string {
	switch {
	case e.Artist != "" && e.Title != "":
		return e.Artist + " - " + e.Title
	case e.Title != "":
		return e.Title
	}
	return strings.TrimSuffix(e.File, fileExt(e.File))
}

func fileExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[i:]
	}
	return ""
}

// Creator generates playlist files in various formats.
//
// Example:
//
//	creator := NewCreator(FormatM3U, true)
//	content := creator.Create("Album", entries)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:180,Artist - Song Title
//	// 01 Song Title.mp3
type Creator struct {
	format   Format
	extended bool // For M3U: include EXTINF lines with duration/title
}

// NewCreator creates a new Creator. extended only affects M3U.
func NewCreator(format Format, extended bool) *Creator {
	return &Creator{
		format:   format,
		extended: extended,
	}
}

// Format returns the creator's format.
func (p *Creator) Format() Format { return p.format }

// Create generates playlist content titled title.
func (p *Creator) Create(title string, entries []Entry) string {
	switch p.format {
	case FormatPLS:
		return p.createPLS(entries)
	case FormatWPL:
		return p.createWPL(title, entries)
	case FormatZPL:
		return p.createZPL(title, entries)
	default:
		return p.createM3U(entries)
	}
}

// createM3U generates an M3U playlist.
//
// Extended M3U format (when extended=true):
//
//	#EXTM3U
//	#EXTINF:180,Artist - Title
//	filename1.mp3
//
// Unknown durations are written as -1.
func (p *Creator) createM3U(entries []Entry) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}
	for _, e := range entries {
		if p.extended {
			fmt.Fprintf(&sb, "#EXTINF:%d,%s\n", seconds(e.Duration), e.label())
		}
		sb.WriteString(e.File + "\n")
	}
	return sb.String()
}

// createPLS generates a PLS playlist.
//
//	[playlist]
//	File1=filename1.mp3
//	Title1=Song Title
//	Length1=180
//	NumberOfEntries=1
//	Version=2
func (p *Creator) createPLS(entries []Entry) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")
	for i, e := range entries {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, e.File)
		fmt.Fprintf(&sb, "Title%d=%s\n", idx, e.label())
		fmt.Fprintf(&sb, "Length%d=%d\n", idx, seconds(e.Duration))
	}
	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(entries))
	sb.WriteString("Version=2\n")
	return sb.String()
}

// createWPL generates a Windows Media Player playlist.
func (p *Creator) createWPL(title string, entries []Entry) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(title))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "      <media src=\"%s\"/>\n", escapeXML(e.File))
	}
	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")
	return sb.String()
}

// createZPL generates a Zune/Groove Music playlist, which adds album,
// artist and duration attributes to each media element.
func (p *Creator) createZPL(title string, entries []Entry) string {
	var sb strings.Builder

	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(title))
	sb.WriteString("    <meta name=\"Generator\" content=\"audiotagtools\"/>\n")
	fmt.Fprintf(&sb, "    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(entries))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "      <media src=\"%s\" albumTitle=\"%s\" albumArtist=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\" duration=\"%d\"/>\n",
			escapeXML(e.File),
			escapeXML(e.Album),
			escapeXML(e.Artist),
			escapeXML(e.Title),
			escapeXML(e.Artist),
			e.Duration.Milliseconds())
	}
	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")
	return sb.String()
}

func seconds(d time.Duration) int {
	if d <= 0 {
		return -1
	}
	return int(d.Round(time.Second) / time.Second)
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
