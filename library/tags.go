package library

import (
	"fmt"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
)

// readMP3Tags reads the ID3v2 artist and title frames from an MP3 file.
// A file without any ID3 frames is reported as an error so the caller falls
// back to the filename, the same treatment a corrupt file gets.
func readMP3Tags(path string) (artist, title string, err error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return "", "", fmt.Errorf("failed to parse ID3 tag: %w", err)
	}
	defer tag.Close()

	if tag.Count() == 0 {
		return "", "", fmt.Errorf("no ID3 frames in %s", path)
	}

	return tag.Artist(), tag.Title(), nil
}

// readFLACTags reads the ARTIST and TITLE Vorbis comment fields from a FLAC
// file. A FLAC without a Vorbis comment block yields empty fields, letting
// the caller apply its defaults.
func readFLACTags(path string) (artist, title string, err error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse FLAC file: %w", err)
	}

	for _, meta := range f.Meta {
		if meta.Type != flac.VorbisComment {
			continue
		}

		cmts, err := flacvorbis.ParseFromMetaDataBlock(*meta)
		if err != nil {
			return "", "", fmt.Errorf("failed to parse Vorbis comment: %w", err)
		}

		if values, err := cmts.Get(flacvorbis.FIELD_ARTIST); err == nil && len(values) > 0 {
			artist = values[0]
		}
		if values, err := cmts.Get(flacvorbis.FIELD_TITLE); err == nil && len(values) > 0 {
			title = values[0]
		}
		return artist, title, nil
	}

	return "", "", nil
}
