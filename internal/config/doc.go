// Package config provides configuration management for audiotag.
//
// This package handles:
//   - Loading and saving settings as TOML
//   - Default configuration values
//   - Environment overrides, including a .env file in the working directory
//   - Path expansion (~) and validation
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// 256 kbps MP3, staging kept next to the source
//	// artist/composer/genre batch rules
//	// state under ~/.local/state/audiotag
//
// # Loading from File
//
//	settings, err := config.Load("")            // default location
//	settings, err := config.Load("./audio.toml") // explicit file
//
// A missing file is not an error; defaults are used.
//
// # Environment
//
//	AUDIOTAG_FFMPEG     ffmpeg binary
//	AUDIOTAG_STATE_DIR  journal and lock directory
//	AUDIOTAG_LOG_LEVEL  debug, info, warn or error
//	AUDIOTAG_BITRATE    MP3 bitrate in kbps
//
// # Saving Settings
//
//	settings.Convert.Bitrate = 320
//	err := settings.Save(path)
package config
