package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/spotcheck/spotcheck/config"
	"github.com/spotcheck/spotcheck/musicbrainz"
)

// maxTracksPerAdd is the Spotify API limit on tracks per add-items call.
const maxTracksPerAdd = 100

// Client wraps the Spotify API client
type Client struct {
	client *spotify.Client
	config *config.Config
}

// Song represents a track from a Spotify playlist
type Song struct {
	ID            string
	Name          string
	Artist        string
	Album         string
	Duration      int
	URI           string
	ISRC          string
	MusicBrainzID string
}

// Label returns the "Artist - Title" string used for comparison against the
// local library.
func (s Song) Label() string {
	return fmt.Sprintf("%s - %s", s.Artist, s.Name)
}

// NewClient creates a Spotify client by running the authorization code flow:
// the user approves the requested scopes in a browser and Spotify redirects
// back to a short-lived local callback server. Reading private playlists and
// creating playlists are user-level operations, so the client credentials
// flow is not enough here.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	auth := newAuthenticator(cfg)

	token, err := authorize(ctx, auth, cfg.Spotify.RedirectURI)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize with Spotify: %w", err)
	}

	client := spotify.New(auth.Client(ctx, token))

	return &Client{
		client: client,
		config: cfg,
	}, nil
}

// newAuthenticator builds the OAuth authenticator from the configured
// credentials, redirect URI, and scopes.
func newAuthenticator(cfg *config.Config) *spotifyauth.Authenticator {
	return spotifyauth.New(
		spotifyauth.WithRedirectURL(cfg.Spotify.RedirectURI),
		spotifyauth.WithClientID(cfg.Spotify.ClientID),
		spotifyauth.WithClientSecret(cfg.Spotify.ClientSecret),
		spotifyauth.WithScopes(cfg.Spotify.Scopes...),
	)
}

// GetPlaylistTracks fetches every track from a Spotify playlist, following
// pagination until all pages have been consumed. Unavailable entries (removed
// or region-restricted tracks come back as empty slots) are skipped without
// failing the fetch. The returned slice preserves playlist order and keeps
// duplicates.
func (c *Client) GetPlaylistTracks(ctx context.Context, playlistID string) ([]Song, error) {
	// Validate playlist exists
	if err := c.validatePlaylist(ctx, playlistID); err != nil {
		return nil, fmt.Errorf("playlist validation failed: %w", err)
	}

	var songs []Song
	page := 1

	// Iterate through all tracks in the playlist
	for {
		playlistTracks, err := c.client.GetPlaylistTracks(ctx, spotify.ID(playlistID), spotify.Offset((page-1)*100), spotify.Limit(100))
		if err != nil {
			return nil, fmt.Errorf("failed to get playlist tracks (page %d): %w", page, err)
		}

		// Process tracks in this page
		for _, item := range playlistTracks.Tracks {
			if item.Track.ID == "" {
				// Removed or unavailable track; nothing to compare against
				continue
			}
			songs = append(songs, convertTrackToSong(item.Track))
		}

		// Check if we've processed all tracks
		if len(playlistTracks.Tracks) < 100 {
			break
		}
		page++
	}

	return songs, nil
}

// validatePlaylist checks if a playlist exists and is accessible
func (c *Client) validatePlaylist(ctx context.Context, playlistID string) error {
	_, err := c.client.GetPlaylist(ctx, spotify.ID(playlistID))
	if err != nil {
		return fmt.Errorf("playlist not found or not accessible: %w", err)
	}
	return nil
}

// convertTrackToSong converts a Spotify track to our Song struct
func convertTrackToSong(track spotify.FullTrack) Song {
	// Get artist name (handle multiple artists)
	artist := ""
	if len(track.Artists) > 0 {
		artist = track.Artists[0].Name
	}

	return Song{
		ID:            string(track.ID),
		Name:          track.Name,
		Artist:        artist,
		Album:         track.Album.Name,
		Duration:      track.Duration,
		URI:           string(track.URI),
		ISRC:          track.ExternalIDs["isrc"],
		MusicBrainzID: "", // Will be populated later if needed
	}
}

// GetPlaylistInfo returns basic information about a playlist
func (c *Client) GetPlaylistInfo(ctx context.Context, playlistID string) (*spotify.FullPlaylist, error) {
	playlist, err := c.client.GetPlaylist(ctx, spotify.ID(playlistID))
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist info: %w", err)
	}

	return playlist, nil
}

// SearchTrack runs a single catalog search for the query and returns the top
// track result, or nil when the catalog has no match for it.
func (c *Client) SearchTrack(ctx context.Context, query string) (*Song, error) {
	results, err := c.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(1))
	if err != nil {
		return nil, fmt.Errorf("search failed for %q: %w", query, err)
	}

	if results.Tracks == nil || len(results.Tracks.Tracks) == 0 {
		return nil, nil
	}

	song := convertTrackToSong(results.Tracks.Tracks[0])
	return &song, nil
}

// CreatePlaylist creates a new private playlist owned by the authenticated
// user and returns its ID.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string) (string, error) {
	user, err := c.client.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to look up current user: %w", err)
	}

	playlist, err := c.client.CreatePlaylistForUser(ctx, user.ID, name, description, false, false)
	if err != nil {
		return "", fmt.Errorf("failed to create playlist %q: %w", name, err)
	}

	return string(playlist.ID), nil
}

// AddTracksToPlaylist adds the given track IDs to a playlist, splitting the
// calls at the API's batch limit. It returns the number of tracks added; on
// error the count covers the chunks that made it through.
func (c *Client) AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) (int, error) {
	added := 0

	for _, chunk := range chunkTrackIDs(trackIDs, maxTracksPerAdd) {
		ids := make([]spotify.ID, len(chunk))
		for i, id := range chunk {
			ids[i] = spotify.ID(id)
		}

		if _, err := c.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids...); err != nil {
			return added, fmt.Errorf("failed to add tracks to playlist: %w", err)
		}
		added += len(chunk)
	}

	return added, nil
}

// chunkTrackIDs splits ids into slices of at most size elements, preserving
// order.
func chunkTrackIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// PopulateMusicBrainzIDs populates MusicBrainz IDs for songs using ISRC or artist/title search
func (c *Client) PopulateMusicBrainzIDs(ctx context.Context, songs []Song, mbClient *musicbrainz.Client) {
	for i := range songs {
		var musicBrainzID string
		var err error

		// Try ISRC first if available
		if songs[i].ISRC != "" {
			musicBrainzID, err = mbClient.GetMusicBrainzIDByISRC(ctx, songs[i].ISRC)
			if err == nil && musicBrainzID != "" {
				songs[i].MusicBrainzID = musicBrainzID
				continue
			}
		}

		// Fall back to artist/title search if ISRC search failed or ISRC not available
		musicBrainzID, err = mbClient.GetMusicBrainzIDByArtistAndTitle(ctx, songs[i].Artist, songs[i].Name)
		if err == nil && musicBrainzID != "" {
			songs[i].MusicBrainzID = musicBrainzID
		}
	}
}
