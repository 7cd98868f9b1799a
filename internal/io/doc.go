// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - File copying and moving (with a cross-device fallback)
//   - Directory tree copying
//   - Filename sanitization for cross-platform compatibility
//   - Cover image resizing and JPEG conversion
//
// # File Operations
//
//	// Move a converted file into place
//	err := ioutils.MoveFile(ctx, "/music/Album (converted)/01.mp3", "/music/Album/01.mp3")
//
//	// Copy a whole tree before editing the copy
//	err := ioutils.CopyTree(ctx, "/music/Playlists", "/music/Playlists (edited)")
//
// MoveFile and CopyTree refuse to overwrite an existing destination.
//
// # Image Processing
//
// The ImageService handles cover art manipulation:
//
//	svc := ioutils.NewImageService()
//
//	// Scale down to 1000 pixels wide, as JPEG
//	folder, _ := svc.ResizeToWidth(ctx, imageData, 1000)
//
//	// Fit within 500x500
//	thumb, _ := svc.ResizeImage(ctx, imageData, 500, 500)
package ioutils
