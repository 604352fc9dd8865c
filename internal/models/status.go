package models

// ReportStatus is the lifecycle state of a report.
type ReportStatus string

const (
	StatusOpen     ReportStatus = "open"
	StatusInReview ReportStatus = "in_review"
	StatusResolved ReportStatus = "resolved"
	StatusClosed   ReportStatus = "closed"
)

// legalEdges is the full transition relation. Open is initial, Closed
// is terminal, and InReview may be sent back to Open for more
// information.
var legalEdges = map[ReportStatus][]ReportStatus{
	StatusOpen:     {StatusInReview, StatusClosed},
	StatusInReview: {StatusResolved, StatusOpen},
	StatusResolved: {StatusClosed},
	StatusClosed:   {},
}

// ParseStatus validates a status string from the outside world.
func ParseStatus(s string) (ReportStatus, bool) {
	switch ReportStatus(s) {
	case StatusOpen, StatusInReview, StatusResolved, StatusClosed:
		return ReportStatus(s), true
	}
	return "", false
}

// CanTransition reports whether from → to is a legal edge.
func CanTransition(from, to ReportStatus) bool {
	for _, next := range legalEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing edges.
func IsTerminal(s ReportStatus) bool {
	return len(legalEdges[s]) == 0
}

// ParseKind validates an interaction kind string.
func ParseKind(s string) (InteractionKind, bool) {
	switch InteractionKind(s) {
	case KindComment, KindUpvote, KindRating:
		return InteractionKind(s), true
	}
	return "", false
}
