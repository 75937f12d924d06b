package musicbrainz

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Client wraps the MusicBrainz API client
type Client struct {
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
}

// Recording represents a MusicBrainz recording
type Recording struct {
	ID    string `xml:"id,attr"`
	Title string `xml:"title"`
}

// SearchResponse represents the response from the MusicBrainz recording search API
type SearchResponse struct {
	RecordingList struct {
		Recordings []Recording `xml:"recording"`
	} `xml:"recording-list"`
}

// ISRCResponse represents the response from the MusicBrainz ISRC lookup API
type ISRCResponse struct {
	ISRC struct {
		RecordingList struct {
			Recordings []Recording `xml:"recording"`
		} `xml:"recording-list"`
	} `xml:"isrc"`
}

// NewClient creates a new MusicBrainz client. Requests are limited to one per
// second, which is what musicbrainz.org asks of anonymous clients.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		userAgent: "spotcheck/1.0 (+https://github.com/spotcheck/spotcheck)",
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// GetMusicBrainzIDByISRC looks up a recording by ISRC and returns its
// MusicBrainz recording ID
func (c *Client) GetMusicBrainzIDByISRC(ctx context.Context, isrc string) (string, error) {
	if isrc == "" {
		return "", fmt.Errorf("ISRC cannot be empty")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait interrupted: %w", err)
	}

	// MusicBrainz API endpoint for ISRC lookups
	baseURL := "https://musicbrainz.org/ws/2/isrc/"

	params := url.Values{}
	params.Add("fmt", "xml")

	// The ISRC goes in the path, not the query
	reqURL := baseURL + isrc + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	// Set required headers for MusicBrainz API
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("MusicBrainz API returned status %d: %s", resp.StatusCode, string(body))
	}

	var isrcResp ISRCResponse
	if err := xml.NewDecoder(resp.Body).Decode(&isrcResp); err != nil {
		return "", fmt.Errorf("failed to decode XML response: %w", err)
	}

	if len(isrcResp.ISRC.RecordingList.Recordings) == 0 {
		return "", fmt.Errorf("no recordings found for ISRC: %s", isrc)
	}

	// Return the first recording's ID
	return isrcResp.ISRC.RecordingList.Recordings[0].ID, nil
}

// GetMusicBrainzIDByArtistAndTitle searches for a recording by artist and
// title and returns the first hit's MusicBrainz recording ID
func (c *Client) GetMusicBrainzIDByArtistAndTitle(ctx context.Context, artist, title string) (string, error) {
	if artist == "" || title == "" {
		return "", fmt.Errorf("artist and title cannot be empty")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait interrupted: %w", err)
	}

	// MusicBrainz API endpoint for searching recordings
	baseURL := "https://musicbrainz.org/ws/2/recording/"

	// Lucene query over the artist and recording fields
	query := fmt.Sprintf("artist:\"%s\" AND recording:\"%s\"",
		strings.ReplaceAll(artist, "\"", "\\\""),
		strings.ReplaceAll(title, "\"", "\\\""))

	params := url.Values{}
	params.Add("query", query)
	params.Add("fmt", "xml")

	req, err := http.NewRequestWithContext(ctx, "GET", baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	// Set required headers for MusicBrainz API
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("MusicBrainz API returned status %d: %s", resp.StatusCode, string(body))
	}

	var searchResp SearchResponse
	if err := xml.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return "", fmt.Errorf("failed to decode XML response: %w", err)
	}

	if len(searchResp.RecordingList.Recordings) == 0 {
		return "", fmt.Errorf("no recordings found for artist: %s, title: %s", artist, title)
	}

	// Return the first recording's ID
	return searchResp.RecordingList.Recordings[0].ID, nil
}
