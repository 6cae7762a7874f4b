package domain

import (
	"math"
	"time"
)

// ReportStatus represents the lifecycle state of a report.
type ReportStatus string

const (
	StatusPending    ReportStatus = "pendente"
	StatusInProgress ReportStatus = "em_andamento"
	StatusResolved   ReportStatus = "resolvido"
	StatusCancelled  ReportStatus = "cancelado"
)

// InitialStatus is assigned to every newly submitted report.
const InitialStatus = StatusPending

var statusLabels = map[ReportStatus]string{
	StatusPending:    "Pendente",
	StatusInProgress: "Em Andamento",
	StatusResolved:   "Resolvido",
	StatusCancelled:  "Cancelado",
}

// Statuses lists the recognised statuses in display order.
func Statuses() []ReportStatus {
	return []ReportStatus{StatusPending, StatusInProgress, StatusResolved, StatusCancelled}
}

// Valid reports whether s is one of the recognised statuses.
func (s ReportStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the human-facing name of the status.
func (s ReportStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// CanTransitionTo reports whether a report in status s may move to next.
// Any recognised status may move to any other recognised status.
func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	return next.Valid()
}

// Report is a citizen complaint about a suspected mosquito breeding site.
type Report struct {
	ID          int64        `json:"id"`
	UserID      int64        `json:"userId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Address     string       `json:"address"`
	Latitude    float64      `json:"latitude"`
	Longitude   float64      `json:"longitude"`
	Status      ReportStatus `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// GeoPoint is a resolved location.
type GeoPoint struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"displayName,omitempty"`
}

// ValidCoordinates reports whether lat/lng are finite and inside WGS84 bounds.
func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
