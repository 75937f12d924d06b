package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spotcheck/spotcheck/config"
	"github.com/spotcheck/spotcheck/library"
	"github.com/spotcheck/spotcheck/musicbrainz"
	"github.com/spotcheck/spotcheck/spotify"
)

// Version information - set during build
var version = "dev"

// Constants for display formatting
const (
	separatorLine   = "="
	separatorLength = 80
)

// Exit codes
const (
	exitCodeSuccess     = 0
	exitCodeRunError    = 1
	exitCodeConfigError = 2
	exitCodeClientError = 3
)

// Name and description of the playlist that collects the missing songs
const (
	missingPlaylistName        = "Missing Songs"
	missingPlaylistDescription = "Songs from the source playlist that were not found in the local music library"
)

// Application represents the main application state
type Application struct {
	config            *config.Config
	spotifyClient     *spotify.Client
	musicBrainzClient *musicbrainz.Client
}

// NewApplication creates a new application instance. Building the Spotify
// client runs the browser authorization flow, so this can block on the user.
func NewApplication(ctx context.Context, cfg *config.Config) (*Application, error) {
	spotifyClient, err := spotify.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Spotify client: %w", err)
	}

	musicBrainzClient := musicbrainz.NewClient()

	return &Application{
		config:            cfg,
		spotifyClient:     spotifyClient,
		musicBrainzClient: musicBrainzClient,
	}, nil
}

// Run executes the main application logic
func (app *Application) Run(ctx context.Context) error {
	// Fetch the remote playlist
	playlistInfo, err := app.spotifyClient.GetPlaylistInfo(ctx, app.config.Spotify.PlaylistID)
	if err != nil {
		return fmt.Errorf("failed to get playlist info: %w", err)
	}

	fmt.Printf("📋 Playlist: %s (%s)\n", playlistInfo.Name, app.config.Spotify.PlaylistID)
	fmt.Println(strings.Repeat(separatorLine, separatorLength))

	songs, err := app.spotifyClient.GetPlaylistTracks(ctx, app.config.Spotify.PlaylistID)
	if err != nil {
		return fmt.Errorf("failed to fetch playlist songs: %w", err)
	}

	app.displaySongs(songs)

	// Scan the local collection
	fmt.Println("\n" + strings.Repeat(separatorLine, separatorLength))
	fmt.Println("SCANNING LOCAL MUSIC LIBRARY")
	fmt.Println(strings.Repeat(separatorLine, separatorLength))
	fmt.Printf("Scanning %s...\n", app.config.Library.MusicDir)

	tracks, stats, err := library.Scan(app.config.Library.MusicDir)
	if err != nil {
		return fmt.Errorf("failed to scan music directory: %w", err)
	}

	app.displayScanStats(stats, len(tracks))

	// Compare the playlist against the library
	fmt.Println("\n" + strings.Repeat(separatorLine, separatorLength))
	fmt.Println("MATCHING SONGS TO LOCAL LIBRARY")
	fmt.Println(strings.Repeat(separatorLine, separatorLength))
	fmt.Printf("Scoring %d songs against %d local tracks (threshold %d)...\n", len(songs), len(tracks), app.config.Match.Threshold)

	matchResults := library.MatchTracks(songs, tracks, app.config.Match.Threshold)

	// Resolve MusicBrainz IDs before the missing tracks are displayed
	app.populateMusicBrainzIDsForMissingTracks(ctx, matchResults)

	// Display results
	app.displayMatchingResults(matchResults)

	missingTracks := collectMissing(matchResults)
	if len(missingTracks) == 0 {
		fmt.Println("\n🎉 Every song in the playlist is already in the local library!")
		return nil
	}

	if err := app.publishMissingTracks(ctx, missingTracks); err != nil {
		return err
	}

	fmt.Println("\n🎉 Done!")
	return nil
}

// displaySongs displays the list of songs in a playlist
func (app *Application) displaySongs(songs []spotify.Song) {
	fmt.Printf("Songs in playlist (%d total):\n", len(songs))
	fmt.Println(strings.Repeat("-", 60))

	for i, song := range songs {
		fmt.Printf("%3d. %s - %s (%s)\n", i+1, song.Artist, song.Name, song.Album)
	}

	fmt.Println()
	fmt.Printf("Successfully fetched %d songs from Spotify playlist\n", len(songs))
}

// displayScanStats displays what the library scan found
func (app *Application) displayScanStats(stats library.ScanStats, trackCount int) {
	fmt.Printf("Found %d audio file(s) among %d entries\n", stats.AudioFiles, stats.FilesWalked)
	if stats.Fallbacks > 0 {
		fmt.Printf("⚠️  %d file(s) had no usable tags; matching on filenames instead\n", stats.Fallbacks)
	}
	fmt.Printf("Successfully indexed %d local tracks\n", trackCount)
}

// displayMatchingResults displays the per-song outcome of the comparison
func (app *Application) displayMatchingResults(matchResults []library.MatchResult) {
	fmt.Println("\n" + strings.Repeat(separatorLine, separatorLength))
	fmt.Println("MATCHING RESULTS")
	fmt.Println(strings.Repeat(separatorLine, separatorLength))

	var present, missing int
	var missingTracks []library.MatchResult

	for i, result := range matchResults {
		status := "❌ Missing"
		if !result.Missing {
			status = "✅ In library"
			present++
		} else {
			missing++
			missingTracks = append(missingTracks, result)
		}

		fmt.Printf("%3d. %s: %s (score %d)", i+1, result.Song.Label(), status, result.Score)
		if !result.Missing && result.Local != nil {
			fmt.Printf(" (local: %s)", result.Local.Label())
		}
		if debugMode && result.Missing && result.Local != nil {
			fmt.Printf(" (closest: %s)", result.Local.Label())
		}
		fmt.Println()
	}

	// Display summary
	app.displaySummary(matchResults, present, missing)

	// Display missing tracks summary if there are any
	if len(missingTracks) > 0 {
		app.displayMissingTracksSummary(missingTracks)
	}
}

// displaySummary displays a summary of the matching results
func (app *Application) displaySummary(matchResults []library.MatchResult, present, missing int) {
	fmt.Println("\n" + strings.Repeat(separatorLine, separatorLength))
	fmt.Println("SUMMARY")
	fmt.Println(strings.Repeat(separatorLine, separatorLength))
	fmt.Printf("Total songs: %d\n", len(matchResults))
	if len(matchResults) > 0 {
		fmt.Printf("In library: %d (%.1f%%)\n", present, float64(present)/float64(len(matchResults))*100)
		fmt.Printf("Missing: %d (%.1f%%)\n", missing, float64(missing)/float64(len(matchResults))*100)
	}
	fmt.Printf("Match threshold: %d\n", app.config.Match.Threshold)
}

// displayMissingTracksSummary displays the tracks without an adequate local match
func (app *Application) displayMissingTracksSummary(missingTracks []library.MatchResult) {
	fmt.Println("\n" + strings.Repeat(separatorLine, separatorLength))
	fmt.Println("MISSING TRACKS SUMMARY")
	fmt.Println(strings.Repeat(separatorLine, separatorLength))
	fmt.Printf("Tracks not found in local library (%d total):\n", len(missingTracks))
	fmt.Println(strings.Repeat("-", 80))

	for i, result := range missingTracks {
		fmt.Printf("%3d. %s\n", i+1, result.Song.Label())
		fmt.Printf("     Spotify track ID: %s\n", result.Song.ID)
		if result.Local != nil {
			fmt.Printf("     Closest local track: %s (score %d)\n", result.Local.Label(), result.Score)
		}
		if result.Song.ISRC != "" {
			fmt.Printf("     ISRC: %s\n", result.Song.ISRC)
		} else {
			fmt.Printf("     ISRC: (not available)\n")
		}
		if result.Song.MusicBrainzID != "" {
			fmt.Printf("     MusicBrainz ID: %s - https://musicbrainz.org/recording/%s\n", result.Song.MusicBrainzID, result.Song.MusicBrainzID)
		} else {
			fmt.Printf("     MusicBrainz ID: (not found)\n")
		}
		if i < len(missingTracks)-1 {
			fmt.Println()
		}
	}
}

// populateMusicBrainzIDsForMissingTracks populates MusicBrainz IDs for songs
// without an adequate local match
func (app *Application) populateMusicBrainzIDsForMissingTracks(ctx context.Context, matchResults []library.MatchResult) {
	var missingSongs []spotify.Song

	// Collect songs that weren't matched
	for _, result := range matchResults {
		if result.Missing {
			missingSongs = append(missingSongs, result.Song)
		}
	}

	// Only proceed if there are missing tracks
	if len(missingSongs) == 0 {
		return
	}

	fmt.Println("\n🔍 Looking up MusicBrainz IDs for missing tracks...")

	// Populate MusicBrainz IDs
	app.spotifyClient.PopulateMusicBrainzIDs(ctx, missingSongs, app.musicBrainzClient)

	// Update the match results with the populated MusicBrainz IDs
	songIndex := 0
	for i := range matchResults {
		if matchResults[i].Missing {
			matchResults[i].Song.MusicBrainzID = missingSongs[songIndex].MusicBrainzID
			songIndex++
		}
	}
}

// publishMissingTracks creates the missing-songs playlist and fills it with
// whatever Spotify can still resolve from the missing labels
func (app *Application) publishMissingTracks(ctx context.Context, missingTracks []library.MatchResult) error {
	fmt.Println("\n" + strings.Repeat(separatorLine, separatorLength))
	fmt.Println("PUBLISHING MISSING SONGS PLAYLIST")
	fmt.Println(strings.Repeat(separatorLine, separatorLength))

	playlistID, err := app.spotifyClient.CreatePlaylist(ctx, missingPlaylistName, missingPlaylistDescription)
	if err != nil {
		return fmt.Errorf("failed to create playlist %q: %w", missingPlaylistName, err)
	}
	fmt.Printf("✅ Created private playlist %q (ID: %s)\n", missingPlaylistName, playlistID)

	trackIDs, err := resolveMissingTrackIDs(ctx, app.spotifyClient, missingTracks)
	if err != nil {
		return fmt.Errorf("failed to resolve missing songs: %w", err)
	}

	if len(trackIDs) == 0 {
		log.Printf("⚠️  Warning: none of the missing songs could be resolved; playlist %q was left empty", missingPlaylistName)
		return nil
	}

	added, err := app.spotifyClient.AddTracksToPlaylist(ctx, playlistID, trackIDs)
	if err != nil {
		return fmt.Errorf("failed to add tracks to playlist %q: %w", missingPlaylistName, err)
	}

	fmt.Printf("✅ Added %d of %d missing songs to %q\n", added, len(missingTracks), missingPlaylistName)
	return nil
}

// trackSearcher is the part of the Spotify client the publisher needs to turn
// missing labels back into catalog tracks.
type trackSearcher interface {
	SearchTrack(ctx context.Context, query string) (*spotify.Song, error)
}

// resolveMissingTrackIDs searches the Spotify catalog for each missing label
// and collects the track IDs it finds. A song the catalog no longer has is
// logged and skipped; a failed search call is returned as an error, since
// network failures are fatal in every phase of the run.
func resolveMissingTrackIDs(ctx context.Context, searcher trackSearcher, missingTracks []library.MatchResult) ([]string, error) {
	var trackIDs []string

	for _, result := range missingTracks {
		song, err := searcher.SearchTrack(ctx, result.Song.Label())
		if err != nil {
			return nil, err
		}
		if song == nil {
			log.Printf("⚠️  No Spotify result for %q; skipping", result.Song.Label())
			continue
		}
		trackIDs = append(trackIDs, song.ID)
	}

	return trackIDs, nil
}

// collectMissing filters the results down to the songs without an adequate
// local match, preserving playlist order
func collectMissing(matchResults []library.MatchResult) []library.MatchResult {
	var missing []library.MatchResult
	for _, result := range matchResults {
		if result.Missing {
			missing = append(missing, result)
		}
	}
	return missing
}

// printConfigHelp displays a pointer to the required settings when loading fails
func printConfigHelp() {
	fmt.Println("\nRequired settings:")
	fmt.Println("  SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET - Spotify app credentials")
	fmt.Println("  SPOTIFY_PLAYLIST_ID - playlist to reconcile (or the -playlist flag)")
	fmt.Println("  LOCAL_MUSIC_DIR - music directory to scan (or the -music-dir flag)")
	fmt.Println("\nExample:")
	fmt.Println("  ./spotcheck -playlist 37i9dQZF1DXcBWIGoYBM5M -music-dir ~/Music")
	fmt.Println("  ./spotcheck -threshold 70 -debug  # looser matching with details")
}

// Global debug flag
var debugMode bool

// IsDebugMode returns true if debug mode is enabled
func IsDebugMode() bool {
	return debugMode
}

// parseFlags parses command line flags into configuration overrides
func parseFlags() map[string]string {
	var playlistID string
	flag.StringVar(&playlistID, "playlist", "", "Spotify playlist ID to reconcile (overrides SPOTIFY_PLAYLIST_ID env var)")
	var musicDir string
	flag.StringVar(&musicDir, "music-dir", "", "Local music directory to scan (overrides LOCAL_MUSIC_DIR env var)")
	var threshold int
	flag.IntVar(&threshold, "threshold", -1, "Match threshold from 0 to 100 (overrides MATCH_THRESHOLD env var)")
	flag.BoolVar(&debugMode, "debug", false, "Enable debug output (closest-match details for missing songs)")

	// Version flag
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Parse()

	// Handle version flag
	if showVersion {
		fmt.Printf("spotcheck version %s\n", version)
		os.Exit(exitCodeSuccess)
	}

	overrides := make(map[string]string)
	if playlistID != "" {
		overrides["SPOTIFY_PLAYLIST_ID"] = playlistID
	}
	if musicDir != "" {
		overrides["LOCAL_MUSIC_DIR"] = musicDir
	}
	if threshold >= 0 {
		if threshold > 100 {
			log.Printf("⚠️  Ignoring -threshold %d: scores run from 0 to 100", threshold)
		} else {
			overrides["MATCH_THRESHOLD"] = strconv.Itoa(threshold)
		}
	}

	return overrides
}

func main() {
	// Parse command line flags first so they can override the environment
	overrides := parseFlags()

	// Load configuration
	cfg, err := config.LoadWithOverrides(overrides)
	if err != nil {
		log.Printf("❌ Failed to load config: %v", err)
		printConfigHelp()
		os.Exit(exitCodeConfigError)
	}

	ctx := context.Background()

	// Create application
	app, err := NewApplication(ctx, cfg)
	if err != nil {
		log.Printf("❌ Failed to create application: %v", err)
		os.Exit(exitCodeClientError)
	}

	// Run application
	if err := app.Run(ctx); err != nil {
		log.Printf("❌ Run failed: %v", err)
		os.Exit(exitCodeRunError)
	}
}
