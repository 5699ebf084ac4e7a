package model

import "time"

// Component category constants.
const (
	CategoryMaskCushion  = "mask-cushion"
	CategoryMaskFrame    = "mask-frame"
	CategoryTubing       = "tubing"
	CategoryWaterChamber = "water-chamber"
	CategoryFilter       = "filter"
	CategoryOther        = "other"
)

// Tracking mode constants.
const (
	TrackingCalendar = "calendar"
	TrackingUsage    = "usage"
	TrackingHybrid   = "hybrid"
)

// Component is a physical equipment item being maintained.
type Component struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Category     string    `json:"category" db:"category"`
	TrackingMode string    `json:"tracking_mode" db:"tracking_mode"`
	UsageCount   int       `json:"usage_count" db:"usage_count"`
	Active       bool      `json:"active" db:"active"`
	Notes        string    `json:"notes,omitempty" db:"notes"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ValidCategory reports whether c is one of the known component categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryMaskCushion, CategoryMaskFrame, CategoryTubing,
		CategoryWaterChamber, CategoryFilter, CategoryOther:
		return true
	}
	return false
}

// ValidTrackingMode reports whether m is a known tracking mode.
func ValidTrackingMode(m string) bool {
	switch m {
	case TrackingCalendar, TrackingUsage, TrackingHybrid:
		return true
	}
	return false
}
