package domain

import "time"

// StatusChange is an audit entry recorded whenever a report's status is set.
// From is empty for the entry written at submission.
type StatusChange struct {
	ReportID  int64        `json:"reportId"`
	From      ReportStatus `json:"from,omitempty"`
	To        ReportStatus `json:"to"`
	ChangedBy int64        `json:"changedBy"`
	ChangedAt time.Time    `json:"changedAt"`
}
