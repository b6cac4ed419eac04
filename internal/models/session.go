package models

import (
	"time"

	"github.com/google/uuid"
)

// StudySession is a scheduled study block. ResourceID is a weak
// reference: the resource outlives its sessions and deleting it
// nullifies the link.
type StudySession struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      time.Time  `json:"endTime"`
	IsCompleted  bool       `json:"isCompleted"`
	ReminderSent bool       `json:"reminderSent"`
	ResourceID   *uuid.UUID `json:"resourceId"`
	Resource     *Resource  `json:"resource,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}
