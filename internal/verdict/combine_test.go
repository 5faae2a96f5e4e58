package verdict

import "testing"

func TestCombine_BothSafe(t *testing.T) {
	v := Combine(OK(true, "no issues"), OK(true, "no issues"), Metadata{VideoID: "abc", Title: "A", ChannelTitle: "B"})

	if !v.IsSafe || !v.IsSafeTranscript || !v.IsSafeThumbnail {
		t.Fatalf("expected all-safe verdict, got %+v", v)
	}
	if v.OverallReason == "" {
		t.Fatal("expected non-empty overall reason")
	}
}

func TestCombine_TranscriptUnsafe(t *testing.T) {
	v := Combine(OK(false, "profanity"), OK(true, "clean"), Metadata{VideoID: "abc"})

	if v.IsSafe {
		t.Fatal("expected overall unsafe")
	}
	if v.IsSafeThumbnail != true {
		t.Fatal("expected thumbnail safe")
	}
	if v.TranscriptReason != "profanity" {
		t.Fatalf("got reason %q", v.TranscriptReason)
	}
}

func TestCombine_ThumbnailCategoriesCrossThreshold(t *testing.T) {
	v := Combine(OK(true, "clean"), OK(false, "flagged: adult, racy"), Metadata{VideoID: "abc"})

	if v.IsSafeThumbnail {
		t.Fatal("expected thumbnail unsafe")
	}
	if v.IsSafe {
		t.Fatal("expected overall unsafe")
	}
}

func TestCombine_BranchErrorForcesUnsafe(t *testing.T) {
	v := Combine(Err("ClassifierUnparseable", "no verdict keyword found"), OK(true, "clean"), Metadata{VideoID: "abc"})

	if v.IsSafeTranscript {
		t.Fatal("branch error must force is_safe_transcript=false")
	}
	if v.IsSafe {
		t.Fatal("branch error must force overall unsafe")
	}
	if v.TranscriptReason != "no verdict keyword found" {
		t.Fatalf("got reason %q", v.TranscriptReason)
	}
}

func TestCombine_BothBranchesError(t *testing.T) {
	v := Combine(
		Err("ClassifierUnavailable", "timeout"),
		Err("ImageFetchFailed", "404"),
		Metadata{VideoID: "abc"},
	)

	if v.IsSafe || v.IsSafeTranscript || v.IsSafeThumbnail {
		t.Fatalf("expected fully unsafe verdict, got %+v", v)
	}
}

func TestCombine_ReasonsAreBounded(t *testing.T) {
	long := make([]byte, MaxReasonLen*2)
	for i := range long {
		long[i] = 'x'
	}

	v := Combine(OK(false, string(long)), OK(true, "clean"), Metadata{VideoID: "abc"})

	if len(v.TranscriptReason) != MaxReasonLen {
		t.Fatalf("expected reason truncated to %d chars, got %d", MaxReasonLen, len(v.TranscriptReason))
	}
}
