package youtubemeta

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/youtube/v3"

	"github.com/happyscroll/verdict-service/internal/verdict"
)

func TestStripVTT_RemovesHeaderTimestampsAndTags(t *testing.T) {
	vtt := "WEBVTT\n\n1\n00:00:01.000 --> 00:00:03.000\nHello <b>world</b>\n\n2\n00:00:03.500 --> 00:00:05.000\nThis is a test"

	got := stripVTT(vtt)
	want := "Hello world This is a test"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStripVTT_EmptyInput(t *testing.T) {
	if got := stripVTT(""); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

func caption(lang, kind string) *youtube.Caption {
	return &youtube.Caption{Snippet: &youtube.CaptionSnippet{Language: lang, TrackKind: kind}}
}

func TestPickCaptionTrack_PrefersManualEnglish(t *testing.T) {
	items := []*youtube.Caption{
		caption("fr", "standard"),
		caption("en", "asr"),
		caption("en", "standard"),
	}

	track, source := pickCaptionTrack(items)
	if track == nil || track.Snippet.Language != "en" || track.Snippet.TrackKind != "standard" {
		t.Fatalf("expected manual english track, got %+v", track)
	}
	if source != verdict.CaptionManual {
		t.Fatalf("expected CaptionManual source, got %v", source)
	}
}

func TestPickCaptionTrack_FallsBackToAutoEnglish(t *testing.T) {
	items := []*youtube.Caption{
		caption("fr", "standard"),
		caption("en", "asr"),
	}

	track, source := pickCaptionTrack(items)
	if track == nil || track.Snippet.TrackKind != "asr" {
		t.Fatalf("expected auto-generated english track, got %+v", track)
	}
	if source != verdict.CaptionAutoGenerated {
		t.Fatalf("expected CaptionAutoGenerated source, got %v", source)
	}
}

func TestPickCaptionTrack_FallsBackToAnyManual(t *testing.T) {
	items := []*youtube.Caption{
		caption("fr", "standard"),
		caption("de", "asr"),
	}

	track, source := pickCaptionTrack(items)
	if track == nil || track.Snippet.Language != "fr" {
		t.Fatalf("expected manual any-language track, got %+v", track)
	}
	if source != verdict.CaptionManual {
		t.Fatalf("expected CaptionManual source, got %v", source)
	}
}

func TestPickCaptionTrack_NoItemsReturnsNil(t *testing.T) {
	track, _ := pickCaptionTrack(nil)
	if track != nil {
		t.Fatalf("expected nil track for empty input, got %+v", track)
	}
}

func testClient() *Client {
	return &Client{httpClient: &http.Client{Timeout: 2 * time.Second}, log: zerolog.Nop()}
}

func TestUrlExists_TrueOn200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient()
	if !c.urlExists(context.Background(), srv.URL) {
		t.Fatal("expected urlExists to return true for a 200 response")
	}
}

func TestUrlExists_FalseOn404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient()
	if c.urlExists(context.Background(), srv.URL) {
		t.Fatal("expected urlExists to return false for a 404 response")
	}
}

func TestUrlExists_FalseOnUnreachable(t *testing.T) {
	c := testClient()
	if c.urlExists(context.Background(), "http://127.0.0.1:1/definitely-not-listening") {
		t.Fatal("expected urlExists to return false when the request fails outright")
	}
}

func TestIsDigitsOnly(t *testing.T) {
	cases := map[string]bool{
		"123":   true,
		"":      false,
		"12a":   false,
		"00012": true,
	}
	for in, want := range cases {
		if got := isDigitsOnly(in); got != want {
			t.Errorf("isDigitsOnly(%q) = %v, want %v", in, got, want)
		}
	}
}
