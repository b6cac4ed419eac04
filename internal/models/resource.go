package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ResourceTypeBook   = "BOOK"
	ResourceTypeVideo  = "VIDEO"
	ResourceTypeCourse = "COURSE"
)

// ValidResourceType reports whether t is one of the closed set of
// resource types.
func ValidResourceType(t string) bool {
	return t == ResourceTypeBook || t == ResourceTypeVideo || t == ResourceTypeCourse
}

type Resource struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Type           string    `json:"type"`
	URL            *string   `json:"url,omitempty"`
	TotalUnits     *int      `json:"totalUnits"`
	CompletedUnits int       `json:"completedUnits"`
	SessionCount   int       `json:"sessionCount"`
	CreatedAt      time.Time `json:"createdAt"`
}
