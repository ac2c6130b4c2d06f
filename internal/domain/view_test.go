package domain

import (
	"encoding/json"
	"testing"
)

func TestPhaseIssuesMarshalKeepsCanonicalOrder(t *testing.T) {
	p := NewPhaseIssues()
	p[3].Issues = []IssueCount{{Issue: "I9 Late", IssueClean: "Late", FindingCount: 4}}

	got, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"Cross-cutting":[],"Phase 1: Before Payment":[],"Phase 2: During Payment":[],` +
		`"Phase 3: After Payment":[{"Issue":"I9 Late","Issue_Clean":"Late","Finding_Count":4}]}`
	if string(got) != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestPhaseIssuesGet(t *testing.T) {
	p := NewPhaseIssues()
	issues, ok := p.Get(PhaseDuringPayment)
	if !ok || issues == nil || len(issues) != 0 {
		t.Fatalf("Get(%q) = %v, %v; want empty non-nil list", PhaseDuringPayment, issues, ok)
	}
	if _, ok := p.Get("Phase 4: Refunds"); ok {
		t.Fatal("Get should report unknown phases as missing")
	}
}

func TestNullCellsMarshalAsNull(t *testing.T) {
	entry := DetailEntry{
		Finding:          T("F1"),
		ActionConfidence: S("0.85"),
		IssueConfidence:  S("high"),
	}
	got, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"finding":"F1","phase":null,"user":null,"issue_explanation":null,"action_explanation":null,` +
		`"action_confidence":0.85,"issue_confidence":"high","campaign_type":null,"user_segment":null,"reference":null}`
	if string(got) != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestScoreFloat(t *testing.T) {
	cases := []struct {
		in     Score
		want   float64
		wantOK bool
	}{
		{S("0.7"), 0.7, true},
		{S(" 1 "), 1, true},
		{S("NaN"), 0, false},
		{S("Inf"), 0, false},
		{S("n/a"), 0, false},
		{Score{}, 0, false},
	}
	for _, tc := range cases {
		got, ok := tc.in.Float()
		if ok != tc.wantOK || got != tc.want {
			t.Fatalf("Float(%q) = %v, %v; want %v, %v", tc.in.Value, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestIsCanonicalPhase(t *testing.T) {
	if !IsCanonicalPhase(T(PhaseCrossCutting)) {
		t.Fatal("Cross-cutting should be canonical")
	}
	if IsCanonicalPhase(T("phase 1: before payment")) {
		t.Fatal("phase matching must be case-sensitive")
	}
	if IsCanonicalPhase(Text{}) {
		t.Fatal("null phase is not canonical")
	}
}

func TestDetailKey(t *testing.T) {
	if got := DetailKey("Fix", T("I1 Label")); got != "Fix|||I1 Label" {
		t.Fatalf("got %q", got)
	}
	if got := DetailKey(NoAction, Text{}); got != "No Action|||" {
		t.Fatalf("got %q", got)
	}
}
