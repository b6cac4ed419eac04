package handlers

import (
	"math"
	"net/http"
	"time"

	"studyplanner-backend/internal/repository"
	"studyplanner-backend/internal/schedule"
)

const upcomingLimit = 3

type DashboardHandler struct {
	sessionRepo *repository.SessionRepo
}

func NewDashboardHandler(sessionRepo *repository.SessionRepo) *DashboardHandler {
	return &DashboardHandler{sessionRepo: sessionRepo}
}

// Today derives the focus-dashboard view: today's sessions, the next
// few upcoming ones, minute totals and the week's completed count,
// evaluated at server local time.
func (h *DashboardHandler) Today(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessionRepo.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch sessions", r))
		return
	}

	now := time.Now()
	today := schedule.TodaySessions(sessions, now)

	completedToday := 0
	for _, s := range today {
		if s.IsCompleted {
			completedToday++
		}
	}

	efficiency := 0
	if len(today) > 0 {
		efficiency = int(math.Round(float64(completedToday) / float64(len(today)) * 100))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"today":             today,
		"upcoming":          schedule.UpcomingNext(sessions, now, upcomingLimit),
		"scheduledMinutes":  schedule.ScheduledMinutes(sessions, now),
		"completedMinutes":  schedule.CompletedMinutes(sessions, now),
		"completedThisWeek": schedule.CompletedThisWeek(sessions, now),
		"efficiency":        efficiency,
	})
}
