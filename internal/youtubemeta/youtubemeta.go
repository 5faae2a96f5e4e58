// Package youtubemeta implements C2: fetching a video's title, channel,
// thumbnail, and caption text from the YouTube Data API.
//
// Caption *text* download is not exposed by the official
// captions.download endpoint without OAuth (API-key auth is read-only for
// that endpoint), so — matching the product's own original implementation
// — this package lists caption tracks via the official API to choose the
// best track, then fetches the rendered text from YouTube's public
// timedtext endpoint, which serves the same track content unauthenticated.
package youtubemeta

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/happyscroll/verdict-service/internal/apierr"
	"github.com/happyscroll/verdict-service/internal/verdict"
)

// timedTextURLFmt renders a caption track's text in WebVTT format without
// requiring OAuth. It is an unofficial but stable surface the product has
// relied on since the Python implementation.
const timedTextURLFmt = "https://www.youtube.com/api/timedtext?v=%s&lang=%s&fmt=vtt"

var vttTagPattern = regexp.MustCompile(`<[^>]+>`)

// Client fetches metadata and captions for a single video.
type Client struct {
	yt         *youtube.Service
	httpClient *http.Client
	log        zerolog.Logger
}

// New constructs a Client backed by the given API key.
func New(ctx context.Context, apiKey string, log zerolog.Logger) (*Client, error) {
	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("youtubemeta: constructing youtube service: %w", err)
	}
	return &Client{
		yt:         svc,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log,
	}, nil
}

// Fetch retrieves everything C8's orchestrator needs about a video: title,
// channel, best-available thumbnail, and caption text resolved through the
// preference chain described on fetchBestCaption, falling back to the
// description plus tags.
func (c *Client) Fetch(ctx context.Context, videoID string) (verdict.Metadata, error) {
	snippet, err := c.fetchSnippet(ctx, videoID)
	if err != nil {
		return verdict.Metadata{}, err
	}

	thumbnailURL, err := c.bestThumbnailURL(ctx, videoID)
	if err != nil {
		return verdict.Metadata{}, err
	}

	caption, source := c.fetchBestCaption(ctx, videoID)
	if caption == "" {
		caption = snippet.description
		source = verdict.CaptionDescriptionFallback
		if len(snippet.tags) > 0 {
			caption = strings.TrimSpace(caption + " " + strings.Join(snippet.tags, " "))
		}
	}

	return verdict.Metadata{
		VideoID:       videoID,
		Title:         snippet.title,
		ChannelTitle:  snippet.channelTitle,
		ThumbnailURL:  thumbnailURL,
		Caption:       caption,
		CaptionSource: source,
	}, nil
}

type videoSnippet struct {
	title        string
	channelTitle string
	description  string
	tags         []string
}

func (c *Client) fetchSnippet(ctx context.Context, videoID string) (videoSnippet, error) {
	call := c.yt.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx)
	resp, err := call.Do()
	if err != nil {
		return videoSnippet{}, mapGoogleAPIError(err)
	}
	if len(resp.Items) == 0 {
		return videoSnippet{}, apierr.New(apierr.VideoNotFound, "no video found for id "+videoID)
	}

	s := resp.Items[0].Snippet
	return videoSnippet{
		title:        s.Title,
		channelTitle: s.ChannelTitle,
		description:  s.Description,
		tags:         s.Tags,
	}, nil
}

// bestThumbnailURL tries thumbnails in quality-descending order — maxres,
// then hq — since maxres is absent for many videos. If neither resolves,
// the component fails with MetadataUnavailable rather than returning a
// dangling URL C3 would fail to fetch later.
func (c *Client) bestThumbnailURL(ctx context.Context, videoID string) (string, error) {
	maxres := fmt.Sprintf("https://i.ytimg.com/vi/%s/maxresdefault.jpg", videoID)
	if c.urlExists(ctx, maxres) {
		return maxres, nil
	}
	hq := fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoID)
	if c.urlExists(ctx, hq) {
		return hq, nil
	}
	return "", apierr.New(apierr.MetadataUnavailable, "no thumbnail available for video "+videoID)
}

func (c *Client) urlExists(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// fetchBestCaption lists available caption tracks and downloads the
// highest-preference one: manual English, then auto-generated English,
// then manual any-language, then auto any-language. Any failure degrades
// to ("", "") so the caller falls back to description+tags rather than
// failing the whole request — captions are a best-effort enhancement, not
// a hard dependency.
func (c *Client) fetchBestCaption(ctx context.Context, videoID string) (string, verdict.CaptionSource) {
	call := c.yt.Captions.List([]string{"snippet"}, videoID).Context(ctx)
	resp, err := call.Do()
	if err != nil {
		c.log.Warn().Err(err).Str("videoId", videoID).Msg("youtubemeta: captions.list failed, falling back")
		return "", ""
	}
	if len(resp.Items) == 0 {
		return "", ""
	}

	track, source := pickCaptionTrack(resp.Items)
	if track == nil {
		return "", ""
	}

	text, err := c.downloadTimedText(ctx, videoID, track.Snippet.Language)
	if err != nil {
		c.log.Warn().Err(err).Str("videoId", videoID).Msg("youtubemeta: timedtext download failed, falling back")
		return "", ""
	}
	return text, source
}

func pickCaptionTrack(items []*youtube.Caption) (*youtube.Caption, verdict.CaptionSource) {
	var manualEnglish, autoEnglish, manualAny, autoAny *youtube.Caption

	for _, item := range items {
		lang := strings.ToLower(item.Snippet.Language)
		isAuto := item.Snippet.TrackKind == "asr"
		isEnglish := strings.HasPrefix(lang, "en")

		switch {
		case isEnglish && !isAuto && manualEnglish == nil:
			manualEnglish = item
		case isEnglish && isAuto && autoEnglish == nil:
			autoEnglish = item
		case !isAuto && manualAny == nil:
			manualAny = item
		case isAuto && autoAny == nil:
			autoAny = item
		}
	}

	switch {
	case manualEnglish != nil:
		return manualEnglish, verdict.CaptionManual
	case autoEnglish != nil:
		return autoEnglish, verdict.CaptionAutoGenerated
	case manualAny != nil:
		return manualAny, verdict.CaptionManual
	case autoAny != nil:
		return autoAny, verdict.CaptionAutoGenerated
	default:
		return nil, ""
	}
}

// downloadTimedText fetches a caption track's text and strips VTT markup
// down to plain spoken text.
func (c *Client) downloadTimedText(ctx context.Context, videoID, lang string) (string, error) {
	if lang == "" {
		lang = "en"
	}
	url := fmt.Sprintf(timedTextURLFmt, videoID, lang)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("youtubemeta: timedtext returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return stripVTT(string(body)), nil
}

// stripVTT reduces a WebVTT document to its spoken-word text: drops the
// header, cue numbers, and timestamp lines, and removes inline tags.
func stripVTT(vtt string) string {
	lines := strings.Split(vtt, "\n")
	var textLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "WEBVTT") || strings.Contains(line, "-->") || isDigitsOnly(line) {
			continue
		}
		clean := vttTagPattern.ReplaceAllString(line, "")
		if clean != "" {
			textLines = append(textLines, clean)
		}
	}

	return strings.Join(textLines, " ")
}

func isDigitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// mapGoogleAPIError translates a googleapi.Error's HTTP status into the
// service's error taxonomy.
func mapGoogleAPIError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return apierr.New(apierr.MetadataUnavailable, err.Error())
	}

	switch gerr.Code {
	case http.StatusNotFound:
		return apierr.New(apierr.VideoNotFound, gerr.Message)
	case http.StatusForbidden, http.StatusUnauthorized:
		return apierr.New(apierr.PermissionDenied, gerr.Message)
	default:
		return apierr.New(apierr.MetadataUnavailable, gerr.Message)
	}
}
