// Package verdict holds the shared data model for a combined video safety
// verdict and the pure logic that merges two branch results into one.
package verdict

import "time"

// BranchKind distinguishes a successful branch analysis from a failed one.
type BranchKind int

const (
	BranchOK BranchKind = iota
	BranchErr
)

// BranchResult is the tagged outcome of one analysis branch (transcript or
// thumbnail). Exactly one of the ok-fields or err-fields is meaningful,
// selected by Kind, so the combiner can be written as a total function over
// the four (ok/err x ok/err) cases instead of branching on a nil check.
type BranchResult struct {
	Kind      BranchKind
	Safe      bool   // meaningful when Kind == BranchOK
	Reason    string // meaningful when Kind == BranchOK
	ErrKind   string // meaningful when Kind == BranchErr, e.g. "ClassifierUnavailable"
	ErrDetail string // meaningful when Kind == BranchErr
}

// OK builds a successful branch result.
func OK(safe bool, reason string) BranchResult {
	return BranchResult{Kind: BranchOK, Safe: safe, Reason: reason}
}

// Err builds a failed branch result. Errors are fail-closed: the combiner
// always treats them as unsafe.
func Err(kind, detail string) BranchResult {
	return BranchResult{Kind: BranchErr, ErrKind: kind, ErrDetail: detail}
}

// CaptionSource tags which tier of the caption preference order produced the
// metadata's caption text.
type CaptionSource string

const (
	CaptionManual              CaptionSource = "manual"
	CaptionAutoGenerated       CaptionSource = "auto-generated"
	CaptionDescriptionFallback CaptionSource = "description-fallback"
)

// Metadata is the immutable per-request video metadata fetched by C2. Its
// lifetime is one request unless it is embedded (via Verdict) into the
// cache.
type Metadata struct {
	VideoID       string
	Title         string
	ChannelTitle  string
	ThumbnailURL  string
	Caption       string
	CaptionSource CaptionSource
}

// MaxReasonLen bounds the length of any human-readable reason string stored
// in a Verdict, per spec: "all string reasons are bounded in length".
const MaxReasonLen = 500

// Verdict is the cached, returned value produced by the combiner and stored
// by the cache layer. It is read-only once created.
type Verdict struct {
	VideoID          string `json:"videoId"`
	IsSafe           bool   `json:"is_safe"`
	IsSafeTranscript bool   `json:"is_safe_transcript"`
	IsSafeThumbnail  bool   `json:"is_safe_thumbnail"`
	TranscriptReason string `json:"transcript_reason"`
	ThumbnailReason  string `json:"thumbnail_reason"`
	OverallReason    string `json:"overall_reason"`
	VideoTitle       string `json:"video_title"`
	ChannelTitle     string `json:"channel_title"`
}

// Entry is the internal cache record: a Verdict plus its storage window.
type Entry struct {
	Verdict   Verdict
	StoredAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the entry is past its TTL as of now.
func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
