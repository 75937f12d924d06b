package library

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"

	"github.com/spotcheck/spotcheck/spotify"
)

// MatchResult pairs a playlist song with its best local candidate.
type MatchResult struct {
	Song    spotify.Song // the remote playlist entry
	Local   *Track       // best-scoring local track, nil when the library is empty
	Score   int          // token-sort similarity of the two labels, 0-100
	Missing bool         // true when the song has no adequate local match
}

// TokenSortRatio scores the similarity of two labels on a 0-100 scale. Both
// strings are lowercased, stripped of punctuation, and token-sorted before
// comparison, so word order and formatting noise do not affect the score. The
// ratio itself is the insert/delete edit distance between the two
// sorted-token strings, normalized by their combined length. Distance and
// length both count runes, so an accented character is one edit rather than
// one per byte. Two strings that normalize to the same form score 100.
func TokenSortRatio(a, b string) int {
	normalizedA := normalizeLabel(a)
	normalizedB := normalizeLabel(b)

	if normalizedA == normalizedB {
		return 100
	}
	if len(normalizedA) == 0 || len(normalizedB) == 0 {
		return 0
	}

	distance := edlib.LCSEditDistance(normalizedA, normalizedB)
	total := utf8.RuneCountInString(normalizedA) + utf8.RuneCountInString(normalizedB)

	return int(math.Round(100 * float64(total-distance) / float64(total)))
}

// normalizeLabel lowercases a label, replaces every non-alphanumeric rune
// with a space, and rejoins the sorted tokens with single spaces.
func normalizeLabel(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	tokens := strings.Fields(b.String())
	sort.Strings(tokens)

	return strings.Join(tokens, " ")
}

// FindBestMatch returns the local track whose label scores highest against
// the given label, along with that score. Ties keep the earlier track in scan
// order, so repeated runs over an unchanged library pick the same track.
// Returns nil and score 0 when the inventory is empty.
func FindBestMatch(tracks []Track, label string) (*Track, int) {
	var best *Track
	bestScore := 0

	for _, track := range tracks {
		score := TokenSortRatio(label, track.Label())
		if best == nil || score > bestScore {
			trackCopy := track // Create a copy to avoid pointer issues
			best = &trackCopy
			bestScore = score
		}
	}

	return best, bestScore
}

// MatchTracks classifies every playlist song against the local inventory. A
// song is missing when the inventory is empty or its best score falls below
// the threshold. The inputs are never mutated and the results preserve
// playlist order, so missing songs come out in the order they appear in the
// playlist.
func MatchTracks(songs []spotify.Song, tracks []Track, threshold int) []MatchResult {
	results := make([]MatchResult, 0, len(songs))

	for _, song := range songs {
		local, score := FindBestMatch(tracks, song.Label())
		results = append(results, MatchResult{
			Song:    song,
			Local:   local,
			Score:   score,
			Missing: local == nil || score < threshold,
		})
	}

	return results
}
