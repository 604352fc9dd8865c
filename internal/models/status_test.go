package models

import "testing"

// TestCanTransition_FullMatrix checks every ordered status pair against
// the legal edge set.
func TestCanTransition_FullMatrix(t *testing.T) {
	all := []ReportStatus{StatusOpen, StatusInReview, StatusResolved, StatusClosed}

	legal := map[[2]ReportStatus]bool{
		{StatusOpen, StatusInReview}:     true,
		{StatusOpen, StatusClosed}:       true,
		{StatusInReview, StatusResolved}: true,
		{StatusInReview, StatusOpen}:     true,
		{StatusResolved, StatusClosed}:   true,
	}

	for _, from := range all {
		for _, to := range all {
			want := legal[[2]ReportStatus{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestClosedIsTerminal(t *testing.T) {
	if !IsTerminal(StatusClosed) {
		t.Error("closed must have no outgoing edges")
	}
	for _, s := range []ReportStatus{StatusOpen, StatusInReview, StatusResolved} {
		if IsTerminal(s) {
			t.Errorf("%s must have outgoing edges", s)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"open", "in_review", "resolved", "closed"} {
		if _, ok := ParseStatus(valid); !ok {
			t.Errorf("ParseStatus(%q) rejected a valid status", valid)
		}
	}
	for _, invalid := range []string{"", "Open", "OPEN", "done", "in-review"} {
		if _, ok := ParseStatus(invalid); ok {
			t.Errorf("ParseStatus(%q) accepted an invalid status", invalid)
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, valid := range []string{"comment", "upvote", "rating"} {
		if _, ok := ParseKind(valid); !ok {
			t.Errorf("ParseKind(%q) rejected a valid kind", valid)
		}
	}
	if _, ok := ParseKind("like"); ok {
		t.Error("ParseKind accepted an unknown kind")
	}
}
