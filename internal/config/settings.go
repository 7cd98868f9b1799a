package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/handiism/audiotagtools/internal/codec"
	"github.com/handiism/audiotagtools/internal/model"
)

// Settings holds all configuration options.
type Settings struct {
	Convert ConvertSettings `toml:"convert"`
	Tags    TagSettings     `toml:"tags"`
	Volume  VolumeSettings  `toml:"volume"`
	Paths   PathSettings    `toml:"paths"`
	Logging LoggingSettings `toml:"logging"`
	Lookup  LookupSettings  `toml:"lookup"`
}

// ConvertSettings configures the FLAC to MP3 pipeline.
type ConvertSettings struct {
	Bitrate         int  `toml:"bitrate"`
	InPlace         bool `toml:"in_place"`
	DeleteOriginals bool `toml:"delete_originals"`
	Workers         int  `toml:"workers"`

	// Failure handling: skip or abort.
	FailurePolicy string  `toml:"failure_policy"`
	MaxRetries    int     `toml:"max_retries"`
	RetryCooldown float64 `toml:"retry_cooldown"`
	RetryExponent float64 `toml:"retry_exponent"`

	// Playlist settings
	CreatePlaylist bool   `toml:"create_playlist"`
	PlaylistFormat string `toml:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `toml:"m3u_extended"`

	// Cover art written next to the converted files.
	SaveFolderArt    bool   `toml:"save_folder_art"`
	FolderArtName    string `toml:"folder_art_name"`
	FolderArtMaxSize int    `toml:"folder_art_max_size"`
}

// TagSettings configures the batch tag editor.
type TagSettings struct {
	OldDelimiter  string                    `toml:"old_delimiter"`
	NewDelimiter  string                    `toml:"new_delimiter"`
	Fields        []model.FieldRule         `toml:"fields"`
	GuardedFields []string                  `toml:"guarded_fields"`
	CaseOverrides map[string]model.CaseRule `toml:"case_overrides"`
}

// VolumeSettings configures volume adjustment.
type VolumeSettings struct {
	StepDB  float64 `toml:"step_db"`
	InPlace bool    `toml:"in_place"`
}

// PathSettings locates state and external binaries.
type PathSettings struct {
	StateDir string `toml:"state_dir"`
	LogFile  string `toml:"log_file"`
	FFmpeg   string `toml:"ffmpeg"`
}

// LoggingSettings configures console and file logging.
type LoggingSettings struct {
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// LookupSettings configures the MusicBrainz client.
type LookupSettings struct {
	BaseURL        string `toml:"base_url"`
	UserAgent      string `toml:"user_agent"`
	Limit          int    `toml:"limit"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	state := defaultStateDir()
	return &Settings{
		Convert: ConvertSettings{
			Bitrate:       codec.DefaultBitrate,
			Workers:       4,
			FailurePolicy: "skip",
			MaxRetries:    2,
			RetryCooldown: 0.2,
			RetryExponent: 4.0,

			PlaylistFormat: "m3u",
			M3UExtended:    true,

			FolderArtName:    "folder",
			FolderArtMaxSize: 1000,
		},
		Tags: TagSettings{
			OldDelimiter:  "/",
			NewDelimiter:  "|",
			Fields:        model.DefaultFieldRules(),
			GuardedFields: []string{model.FieldArtist, model.FieldComposer},
			CaseOverrides: map[string]model.CaseRule{
				"aor":        model.CaseUpper,
				"awolnation": model.CaseUpper,
			},
		},
		Volume: VolumeSettings{
			StepDB: 10,
		},
		Paths: PathSettings{
			StateDir: state,
			LogFile:  filepath.Join(state, "audiotag.log"),
			FFmpeg:   "ffmpeg",
		},
		Logging: LoggingSettings{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		},
		Lookup: LookupSettings{
			BaseURL:        "https://musicbrainz.org/ws/2",
			UserAgent:      "audiotagtools/1.0 ( https://github.com/handiism/audiotagtools )",
			Limit:          10,
			TimeoutSeconds: 30,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/audiotag/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "audiotag", "config.toml"), nil
}

// Load reads settings from a TOML file, then applies the environment.
// An empty path means DefaultPath. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	settings := DefaultSettings()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(settings); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	settings.applyEnv()

	if err := settings.normalize(); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save writes settings to a TOML file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// LockPath is the reorganizer's single-writer lock.
func (s *Settings) LockPath() string {
	return filepath.Join(s.Paths.StateDir, "reorganize.lock")
}

// JournalPath is the run journal database.
func (s *Settings) JournalPath() string {
	return filepath.Join(s.Paths.StateDir, "journal.db")
}

func (s *Settings) applyEnv() {
	s.Paths.FFmpeg = getEnv("AUDIOTAG_FFMPEG", s.Paths.FFmpeg)
	if state := getEnv("AUDIOTAG_STATE_DIR", s.Paths.StateDir); state != s.Paths.StateDir {
		if s.Paths.LogFile == filepath.Join(s.Paths.StateDir, "audiotag.log") {
			s.Paths.LogFile = filepath.Join(state, "audiotag.log")
		}
		s.Paths.StateDir = state
	}
	s.Logging.Level = getEnv("AUDIOTAG_LOG_LEVEL", s.Logging.Level)
	s.Convert.Bitrate = getEnvInt("AUDIOTAG_BITRATE", s.Convert.Bitrate)
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intVal
		}
	}
	return fallback
}

func defaultStateDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "audiotag")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "audiotag")
	}
	return filepath.Join(home, ".local", "state", "audiotag")
}
