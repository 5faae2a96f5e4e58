package transcript

import (
	"strings"
	"testing"
)

func TestParseVerdict_SafeYes(t *testing.T) {
	res := parseVerdict("VERDICT: YES\nREASON: Educational content about animals, nothing concerning.")
	if !res.Safe {
		t.Fatalf("expected safe, got %+v", res)
	}
	if !strings.Contains(res.Reason, "Educational") {
		t.Fatalf("got reason %q", res.Reason)
	}
}

func TestParseVerdict_UnsafeNo(t *testing.T) {
	res := parseVerdict("VERDICT: NO\nREASON: Contains profanity at 2:15.")
	if res.Safe {
		t.Fatal("expected unsafe")
	}
	if !strings.Contains(res.Reason, "profanity") {
		t.Fatalf("got reason %q", res.Reason)
	}
}

func TestParseVerdict_CaseInsensitive(t *testing.T) {
	res := parseVerdict("verdict: yes\nreason: fine")
	if !res.Safe {
		t.Fatal("expected case-insensitive match to parse as safe")
	}
}

func TestParseVerdict_MissingVerdictKeyword_Unparseable(t *testing.T) {
	res := parseVerdict("This video seems fine to me.")
	if res.Safe {
		t.Fatal("expected unparseable response to resolve unsafe via branch error")
	}
	if res.ErrKind != "ClassifierUnparseable" {
		t.Fatalf("expected ClassifierUnparseable, got %q", res.ErrKind)
	}
}

func TestParseVerdict_HedgingForcesUnsafeDespiteYes(t *testing.T) {
	res := parseVerdict("VERDICT: YES\nREASON: It might contain mild language but unclear.")
	if res.Safe {
		t.Fatal("expected hedge language to force unsafe despite YES verdict")
	}
}

func TestBuildPrompt_IncludesCaptionAndRules(t *testing.T) {
	prompt := buildPrompt("Fun Farm Animals", "KidsChannel", "Look at the happy cow")
	if !strings.Contains(prompt, "Fun Farm Animals") {
		t.Fatal("expected prompt to include title")
	}
	if !strings.Contains(prompt, "Look at the happy cow") {
		t.Fatal("expected prompt to include caption text")
	}
	if !strings.Contains(prompt, "VERDICT:") {
		t.Fatal("expected prompt to specify response format")
	}
}

func TestContainsHedge(t *testing.T) {
	if !containsHedge("It could be inappropriate") {
		t.Fatal("expected hedge detected")
	}
	if containsHedge("Completely safe and educational") {
		t.Fatal("expected no hedge detected")
	}
}
