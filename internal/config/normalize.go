package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/handiism/audiotagtools/internal/codec"
	"github.com/handiism/audiotagtools/internal/model"
)

func (s *Settings) normalize() error {
	s.Convert.Bitrate = codec.ResolveBitrate(s.Convert.Bitrate)
	if s.Convert.DeleteOriginals {
		s.Convert.InPlace = true
	}
	if s.Convert.Workers < 1 {
		s.Convert.Workers = 1
	}
	if s.Convert.MaxRetries < 0 {
		s.Convert.MaxRetries = 0
	}
	s.Convert.FailurePolicy = strings.ToLower(strings.TrimSpace(s.Convert.FailurePolicy))
	s.Convert.PlaylistFormat = strings.ToLower(strings.TrimSpace(s.Convert.PlaylistFormat))
	s.Logging.Level = strings.ToLower(strings.TrimSpace(s.Logging.Level))

	if len(s.Tags.CaseOverrides) > 0 {
		normalized := make(map[string]model.CaseRule, len(s.Tags.CaseOverrides))
		for token, rule := range s.Tags.CaseOverrides {
			normalized[strings.ToLower(strings.TrimSpace(token))] = rule
		}
		s.Tags.CaseOverrides = normalized
	}
	for i, rule := range s.Tags.Fields {
		s.Tags.Fields[i].Field = strings.ToLower(strings.TrimSpace(rule.Field))
	}

	var err error
	if s.Paths.StateDir, err = ExpandPath(s.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if s.Paths.LogFile, err = ExpandPath(s.Paths.LogFile); err != nil {
		return fmt.Errorf("paths.log_file: %w", err)
	}
	// A bare binary name is looked up on PATH.
	if strings.ContainsRune(s.Paths.FFmpeg, os.PathSeparator) || strings.HasPrefix(s.Paths.FFmpeg, "~") {
		if s.Paths.FFmpeg, err = ExpandPath(s.Paths.FFmpeg); err != nil {
			return fmt.Errorf("paths.ffmpeg: %w", err)
		}
	}
	return nil
}

// ExpandPath resolves a leading ~ and makes the path absolute.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
