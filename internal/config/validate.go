package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (s *Settings) Validate() error {
	if err := s.validateConvert(); err != nil {
		return err
	}
	if err := s.validateTags(); err != nil {
		return err
	}
	if err := s.validateLogging(); err != nil {
		return err
	}
	if s.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	if strings.TrimSpace(s.Paths.FFmpeg) == "" {
		return errors.New("paths.ffmpeg must be set")
	}
	if s.Lookup.Limit < 1 || s.Lookup.Limit > 100 {
		return errors.New("lookup.limit must be between 1 and 100")
	}
	return nil
}

func (s *Settings) validateConvert() error {
	switch s.Convert.FailurePolicy {
	case "skip", "abort":
	default:
		return fmt.Errorf("convert.failure_policy must be skip or abort, got %q", s.Convert.FailurePolicy)
	}
	switch s.Convert.PlaylistFormat {
	case "m3u", "pls", "wpl", "zpl":
	default:
		return fmt.Errorf("convert.playlist_format must be m3u, pls, wpl or zpl, got %q", s.Convert.PlaylistFormat)
	}
	if s.Convert.RetryCooldown < 0 || s.Convert.RetryExponent < 1 {
		return errors.New("convert.retry_cooldown must be >= 0 and convert.retry_exponent >= 1")
	}
	if s.Convert.SaveFolderArt && s.Convert.FolderArtMaxSize < 1 {
		return errors.New("convert.folder_art_max_size must be positive")
	}
	return nil
}

func (s *Settings) validateTags() error {
	if s.Tags.OldDelimiter == "" || s.Tags.NewDelimiter == "" {
		return errors.New("tags.old_delimiter and tags.new_delimiter must be set")
	}
	if len(s.Tags.Fields) == 0 {
		return errors.New("tags.fields must name at least one field")
	}
	seen := make(map[string]bool, len(s.Tags.Fields))
	for _, rule := range s.Tags.Fields {
		if rule.Field == "" {
			return errors.New("tags.fields entries need a field name")
		}
		if seen[rule.Field] {
			return fmt.Errorf("tags.fields lists %q twice", rule.Field)
		}
		seen[rule.Field] = true
	}
	return nil
}

func (s *Settings) validateLogging() error {
	switch s.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", s.Logging.Level)
	}
	if s.Logging.MaxSizeMB < 1 {
		return errors.New("logging.max_size_mb must be positive")
	}
	return nil
}
