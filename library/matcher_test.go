package library

import (
	"testing"

	"github.com/spotcheck/spotcheck/spotify"
)

func TestTokenSortRatioIdenticalStrings(t *testing.T) {
	tests := []string{
		"Daft Punk - One More Time",
		"daft punk - one more time",
		"A",
		"Multiple   spaces   between   tokens",
	}

	for _, s := range tests {
		if score := TokenSortRatio(s, s); score != 100 {
			t.Errorf("TokenSortRatio(%q, %q) = %d, expected 100", s, s, score)
		}
	}
}

func TestTokenSortRatioIgnoresTokenOrder(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{"Daft Punk - One More Time", "One More Time - Daft Punk"},
		{"Around the World", "the World Around"},
		{"a b c", "c b a"},
	}

	for _, test := range tests {
		if score := TokenSortRatio(test.a, test.b); score != 100 {
			t.Errorf("TokenSortRatio(%q, %q) = %d, expected 100", test.a, test.b, score)
		}
	}
}

func TestTokenSortRatioIgnoresCaseAndPunctuation(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{"Hello, World!", "hello world"},
		{"Song (Remastered)", "song remastered"},
		{"ARTIST - TITLE", "artist title"},
	}

	for _, test := range tests {
		if score := TokenSortRatio(test.a, test.b); score != 100 {
			t.Errorf("TokenSortRatio(%q, %q) = %d, expected 100", test.a, test.b, score)
		}
	}
}

func TestTokenSortRatioEmptyStrings(t *testing.T) {
	if score := TokenSortRatio("", ""); score != 100 {
		t.Errorf("Expected two empty strings to score 100, got %d", score)
	}

	if score := TokenSortRatio("something", ""); score != 0 {
		t.Errorf("Expected empty-vs-nonempty to score 0, got %d", score)
	}

	if score := TokenSortRatio("", "something"); score != 0 {
		t.Errorf("Expected nonempty-vs-empty to score 0, got %d", score)
	}

	// Pure punctuation normalizes to nothing as well
	if score := TokenSortRatio("!!!", "???"); score != 100 {
		t.Errorf("Expected punctuation-only strings to score 100, got %d", score)
	}
}

func TestTokenSortRatioKnownScores(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		// One substitution across three letters
		{"abc", "abd", 67},
		// Disjoint strings of equal length
		{"abc", "xyz", 0},
		// Radio edit variant of a five-token label
		{"Daft Punk - One More Time", "Daft Punk - One More Time (Radio Edit)", 81},
		// Single edit variant of a three-token label
		{"Jessie Ware - Spotlight", "Jessie Ware - Spotlight (Single Edit)", 78},
		// Bonus track variant of a two-token label
		{"the lakes", "the lakes - bonus track", 60},
	}

	for _, test := range tests {
		score := TokenSortRatio(test.a, test.b)
		if score != test.expected {
			t.Errorf("TokenSortRatio(%q, %q) = %d, expected %d", test.a, test.b, score, test.expected)
		}
	}
}

func TestTokenSortRatioSuffixNoiseSensitivity(t *testing.T) {
	// Long labels absorb release-name noise; short labels do not, because the
	// extra tokens weigh more against a small combined length.
	long := TokenSortRatio("Daft Punk - One More Time", "Daft Punk - One More Time (Radio Edit)")
	short := TokenSortRatio("the lakes", "the lakes - bonus track")

	t.Logf("Long label with suffix noise: %d", long)
	t.Logf("Short label with suffix noise: %d", short)

	if long < 80 {
		t.Errorf("Expected long label to clear the default threshold despite suffix noise, got %d", long)
	}
	if short >= 80 {
		t.Errorf("Expected short label pair to land under the default threshold, got %d", short)
	}
}

func TestTokenSortRatioCountsRunesNotBytes(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		// One accent apart across matching 12-rune labels
		{"Beyoncé - Halo", "Beyonce - Halo", 92},
		// Two accents apart across three tokens
		{"Sigur Rós - Hoppípolla", "Sigur Ros - Hoppipolla", 90},
		// Two accents apart across two short tokens
		{"Björk - Jóga", "Bjork - Joga", 80},
	}

	for _, test := range tests {
		score := TokenSortRatio(test.a, test.b)
		if score != test.expected {
			t.Errorf("TokenSortRatio(%q, %q) = %d, expected %d", test.a, test.b, score, test.expected)
		}
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Daft Punk - One More Time", "daft more one punk time"},
		{"Hello, World!", "hello world"},
		{"  spaced   out  ", "out spaced"},
		{"MixedCASE", "mixedcase"},
		{"123 abc", "123 abc"},
		{"---", ""},
		{"", ""},
	}

	for _, test := range tests {
		result := normalizeLabel(test.input)
		if result != test.expected {
			t.Errorf("normalizeLabel(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestFindBestMatchEmptyInventory(t *testing.T) {
	track, score := FindBestMatch(nil, "Daft Punk - One More Time")

	if track != nil {
		t.Errorf("Expected nil track for empty inventory, got %+v", track)
	}
	if score != 0 {
		t.Errorf("Expected score 0 for empty inventory, got %d", score)
	}
}

func TestFindBestMatchPicksHighestScore(t *testing.T) {
	tracks := []Track{
		{Artist: "Radiohead", Title: "Creep", Source: SourceTags},
		{Artist: "Daft Punk", Title: "One More Time", Source: SourceTags},
		{Artist: "Daft Punk", Title: "Around the World", Source: SourceTags},
	}

	best, score := FindBestMatch(tracks, "Daft Punk - One More Time")

	if best == nil {
		t.Fatal("Expected a best match, got nil")
	}
	if best.Title != "One More Time" {
		t.Errorf("Expected best match 'One More Time', got %q", best.Title)
	}
	if score != 100 {
		t.Errorf("Expected score 100 for exact label, got %d", score)
	}
}

func TestFindBestMatchFirstWinsTies(t *testing.T) {
	// Two files carry the same label; the earlier one in scan order wins
	tracks := []Track{
		{Path: "/music/a/song.mp3", Artist: "Daft Punk", Title: "One More Time", Source: SourceTags},
		{Path: "/music/b/song.mp3", Artist: "Daft Punk", Title: "One More Time", Source: SourceTags},
	}

	best, score := FindBestMatch(tracks, "Daft Punk - One More Time")

	if best == nil {
		t.Fatal("Expected a best match, got nil")
	}
	if score != 100 {
		t.Errorf("Expected score 100, got %d", score)
	}
	if best.Path != "/music/a/song.mp3" {
		t.Errorf("Expected the first track in scan order to win the tie, got %s", best.Path)
	}
}

func TestFindBestMatchAgainstFilenameFallback(t *testing.T) {
	// A fallback track labels as its filename; the extension tokens are just
	// more noise for the scorer
	tracks := []Track{
		{Path: "/music/Daft Punk - One More Time.mp3", Source: SourceFilename},
	}

	best, score := FindBestMatch(tracks, "Daft Punk - One More Time")

	t.Logf("Score against filename label: %d", score)

	if best == nil {
		t.Fatal("Expected a best match, got nil")
	}
	if score < 80 {
		t.Errorf("Expected fallback filename to clear the default threshold, got %d", score)
	}
}

func TestMatchTracksEmptyPlaylist(t *testing.T) {
	tracks := []Track{{Artist: "Radiohead", Title: "Creep", Source: SourceTags}}

	results := MatchTracks(nil, tracks, 80)

	if len(results) != 0 {
		t.Errorf("Expected no results for empty playlist, got %d", len(results))
	}
}

func TestMatchTracksEmptyLibrary(t *testing.T) {
	songs := []spotify.Song{
		{Artist: "A", Name: "B"},
		{Artist: "C", Name: "D"},
	}

	results := MatchTracks(songs, nil, 80)

	if len(results) != len(songs) {
		t.Fatalf("Expected %d results, got %d", len(songs), len(results))
	}

	for _, result := range results {
		if !result.Missing {
			t.Errorf("Expected %q to be missing against an empty library", result.Song.Label())
		}
		if result.Local != nil {
			t.Errorf("Expected nil local track for %q, got %+v", result.Song.Label(), result.Local)
		}
		if result.Score != 0 {
			t.Errorf("Expected score 0 for %q, got %d", result.Song.Label(), result.Score)
		}
	}
}

func TestMatchTracksThresholdZero(t *testing.T) {
	songs := []spotify.Song{
		{Artist: "Daft Punk", Name: "One More Time"},
		{Artist: "Completely Different", Name: "Thing"},
	}
	tracks := []Track{{Artist: "Radiohead", Title: "Creep", Source: SourceTags}}

	results := MatchTracks(songs, tracks, 0)

	for _, result := range results {
		if result.Missing {
			t.Errorf("Expected nothing to be missing at threshold 0, %q was", result.Song.Label())
		}
	}
}

func TestMatchTracksExactMatchAtMaxThreshold(t *testing.T) {
	songs := []spotify.Song{{Artist: "Daft Punk", Name: "One More Time"}}
	tracks := []Track{{Artist: "Daft Punk", Title: "One More Time", Source: SourceTags}}

	results := MatchTracks(songs, tracks, 100)

	if results[0].Missing {
		t.Errorf("Expected exact label to be present even at threshold 100, score %d", results[0].Score)
	}
	if results[0].Score != 100 {
		t.Errorf("Expected score 100 for exact label, got %d", results[0].Score)
	}
}

func TestMatchTracksRadioEditScenario(t *testing.T) {
	// "One More Time" shares enough tokens with the local radio edit to count
	// as present; "Around the World" has no local counterpart
	songs := []spotify.Song{
		{Artist: "Daft Punk", Name: "One More Time"},
		{Artist: "Daft Punk", Name: "Around the World"},
	}
	tracks := []Track{
		{Artist: "Daft Punk", Title: "One More Time (Radio Edit)", Source: SourceTags},
	}

	results := MatchTracks(songs, tracks, 80)

	for _, result := range results {
		t.Logf("%s: score %d, missing %v", result.Song.Label(), result.Score, result.Missing)
	}

	if results[0].Missing {
		t.Errorf("Expected %q to be present, score %d", results[0].Song.Label(), results[0].Score)
	}
	if !results[1].Missing {
		t.Errorf("Expected %q to be missing, score %d", results[1].Song.Label(), results[1].Score)
	}
}

func TestMatchTracksAccentedSpelling(t *testing.T) {
	// Local tags dropped the accents the playlist label carries. Each accent
	// costs one edit, which keeps this pair exactly at the default threshold.
	songs := []spotify.Song{{Artist: "Björk", Name: "Jóga"}}
	tracks := []Track{{Artist: "Bjork", Title: "Joga", Source: SourceTags}}

	results := MatchTracks(songs, tracks, 80)

	t.Logf("%s: score %d, missing %v", results[0].Song.Label(), results[0].Score, results[0].Missing)

	if results[0].Missing {
		t.Errorf("Expected %q to match the unaccented local spelling, score %d", results[0].Song.Label(), results[0].Score)
	}
}

func TestMatchTracksOrderPreserving(t *testing.T) {
	songs := []spotify.Song{
		{Artist: "B", Name: "Second"},
		{Artist: "A", Name: "First"},
		{Artist: "C", Name: "Third"},
		{Artist: "A", Name: "First"}, // playlists can repeat tracks
	}

	results := MatchTracks(songs, nil, 80)

	if len(results) != len(songs) {
		t.Fatalf("Expected %d results, got %d", len(songs), len(results))
	}

	for i := range results {
		if results[i].Song.Name != songs[i].Name {
			t.Errorf("Position %d: expected %q, got %q", i, songs[i].Name, results[i].Song.Name)
		}
	}
}

func TestMatchTracksDeterministic(t *testing.T) {
	songs := []spotify.Song{
		{Artist: "Daft Punk", Name: "One More Time"},
		{Artist: "Daft Punk", Name: "Around the World"},
		{Artist: "Radiohead", Name: "Creep"},
	}
	tracks := []Track{
		{Artist: "Daft Punk", Title: "One More Time (Radio Edit)", Source: SourceTags},
		{Artist: "Radiohead", Title: "Creep", Source: SourceTags},
	}

	first := MatchTracks(songs, tracks, 80)
	second := MatchTracks(songs, tracks, 80)

	if len(first) != len(second) {
		t.Fatalf("Expected identical result counts, got %d and %d", len(first), len(second))
	}

	for i := range first {
		if first[i].Score != second[i].Score {
			t.Errorf("Position %d: scores differ between runs (%d vs %d)", i, first[i].Score, second[i].Score)
		}
		if first[i].Missing != second[i].Missing {
			t.Errorf("Position %d: missing classification differs between runs", i)
		}
	}
}

func TestMatchTracksDoesNotMutateInputs(t *testing.T) {
	songs := []spotify.Song{{Artist: "Daft Punk", Name: "One More Time"}}
	tracks := []Track{{Artist: "Radiohead", Title: "Creep", Source: SourceTags}}

	MatchTracks(songs, tracks, 80)

	if songs[0].Artist != "Daft Punk" || songs[0].Name != "One More Time" {
		t.Errorf("Expected songs to be unchanged, got %+v", songs[0])
	}
	if tracks[0].Artist != "Radiohead" || tracks[0].Title != "Creep" {
		t.Errorf("Expected tracks to be unchanged, got %+v", tracks[0])
	}
}
