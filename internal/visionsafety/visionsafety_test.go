package visionsafety

import (
	"strings"
	"testing"

	vision "google.golang.org/api/vision/v1"
)

func TestEvaluateSafeSearch_AllUnlikely_Safe(t *testing.T) {
	a := &vision.SafeSearchAnnotation{
		Adult: "VERY_UNLIKELY", Violence: "VERY_UNLIKELY", Racy: "VERY_UNLIKELY",
		Medical: "VERY_UNLIKELY", Spoof: "VERY_UNLIKELY",
	}

	res := evaluateSafeSearch(a, "POSSIBLE")
	if !res.Safe {
		t.Fatalf("expected safe, got %+v", res)
	}
}

func TestEvaluateSafeSearch_AdultAtThreshold_Unsafe(t *testing.T) {
	a := &vision.SafeSearchAnnotation{
		Adult: "POSSIBLE", Violence: "VERY_UNLIKELY", Racy: "VERY_UNLIKELY",
		Medical: "VERY_UNLIKELY", Spoof: "VERY_UNLIKELY",
	}

	res := evaluateSafeSearch(a, "POSSIBLE")
	if res.Safe {
		t.Fatal("expected unsafe when adult crosses threshold")
	}
	if !strings.Contains(res.Reason, "adult") {
		t.Fatalf("expected reason to mention adult, got %q", res.Reason)
	}
}

func TestEvaluateSafeSearch_MedicalAloneDoesNotForceUnsafe(t *testing.T) {
	a := &vision.SafeSearchAnnotation{
		Adult: "VERY_UNLIKELY", Violence: "VERY_UNLIKELY", Racy: "VERY_UNLIKELY",
		Medical: "VERY_LIKELY", Spoof: "VERY_UNLIKELY",
	}

	res := evaluateSafeSearch(a, "POSSIBLE")
	if !res.Safe {
		t.Fatalf("expected medical-only flag to not force unsafe, got %+v", res)
	}
}

func TestEvaluateSafeSearch_BelowThresholdIsSafe(t *testing.T) {
	a := &vision.SafeSearchAnnotation{
		Adult: "UNLIKELY", Violence: "UNLIKELY", Racy: "UNLIKELY",
		Medical: "UNLIKELY", Spoof: "UNLIKELY",
	}

	res := evaluateSafeSearch(a, "LIKELY")
	if !res.Safe {
		t.Fatalf("expected safe below threshold, got %+v", res)
	}
}

func TestEvaluateSafeSearch_MultipleCategoriesListed(t *testing.T) {
	a := &vision.SafeSearchAnnotation{
		Adult: "LIKELY", Violence: "LIKELY", Racy: "VERY_UNLIKELY",
		Medical: "VERY_UNLIKELY", Spoof: "VERY_UNLIKELY",
	}

	res := evaluateSafeSearch(a, "POSSIBLE")
	if res.Safe {
		t.Fatal("expected unsafe")
	}
	if !strings.Contains(res.Reason, "adult") || !strings.Contains(res.Reason, "violence") {
		t.Fatalf("expected both categories in reason, got %q", res.Reason)
	}
}
