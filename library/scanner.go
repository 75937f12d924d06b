package library

import (
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
)

// Track source markers: how a track's label was derived.
const (
	SourceTags     = "tags"
	SourceFilename = "filename"
)

// audioExtensions are the recognized audio file extensions, compared
// case-insensitively.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".wav":  true,
}

// Track represents a single audio file found in the local library
type Track struct {
	Path   string // path of the file as seen during the walk
	Artist string
	Title  string
	Source string // SourceTags when metadata was read, SourceFilename on fallback
}

// Label returns the "Artist - Title" comparison string for the track.
// Fallback tracks are labeled by their bare filename, matching how an
// unreadable file is the filename and nothing else.
func (t Track) Label() string {
	if t.Source == SourceTags {
		return fmt.Sprintf("%s - %s", t.Artist, t.Title)
	}
	return filepath.Base(t.Path)
}

// ScanStats reports what a scan saw. The counts are for logging; they are not
// part of the matching contract.
type ScanStats struct {
	FilesWalked int // regular files visited under the root
	AudioFiles  int // files matching a recognized audio extension
	Fallbacks   int // audio files labeled by filename because tags were unreadable
}

// Scan walks the music library rooted at root and returns one Track per
// recognized audio file, in walk order. Files whose tags cannot be read fall
// back to a filename label instead of failing the scan. An unreadable root is
// an error; unreadable subdirectories are skipped with a warning.
func Scan(root string) ([]Track, ScanStats, error) {
	var tracks []Track
	var stats ScanStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("cannot read music directory %s: %w", root, err)
			}
			log.Printf("⚠️  Skipping unreadable path %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.FilesWalked++

		ext := strings.ToLower(filepath.Ext(path))
		if !audioExtensions[ext] {
			return nil
		}
		stats.AudioFiles++

		track := readTrack(path, ext)
		if track.Source == SourceFilename {
			stats.Fallbacks++
		}
		tracks = append(tracks, track)
		return nil
	})
	if err != nil {
		return nil, ScanStats{}, err
	}

	return tracks, stats, nil
}

// readTrack extracts metadata for a single audio file. When the tags cannot
// be read the track degrades to a filename label; when they can but a field
// is empty, the artist defaults to "Unknown" and the title to the filename.
func readTrack(path, ext string) Track {
	var artist, title string
	var err error

	switch ext {
	case ".mp3":
		artist, title, err = readMP3Tags(path)
	case ".flac":
		artist, title, err = readFLACTags(path)
	default:
		// No tag reader for this format (.wav); label by filename
		return Track{Path: path, Source: SourceFilename}
	}
	if err != nil {
		return Track{Path: path, Source: SourceFilename}
	}

	if artist == "" {
		artist = "Unknown"
	}
	if title == "" {
		title = filepath.Base(path)
	}

	return Track{
		Path:   path,
		Artist: artist,
		Title:  title,
		Source: SourceTags,
	}
}
