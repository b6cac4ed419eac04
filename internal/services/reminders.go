package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"studyplanner-backend/internal/events"
	"studyplanner-backend/internal/models"
)

const defaultDispatchTimeout = 10 * time.Second

// sessionStore is the slice of the session repository the sweep needs.
type sessionStore interface {
	DueForReminder(ctx context.Context, now, horizon time.Time) ([]models.StudySession, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID) (bool, error)
}

type reminderSender interface {
	SendSessionReminderEmail(to, sessionTitle, resourceTitle string, startsAt time.Time) error
}

// ReminderScheduler periodically scans for sessions starting within the
// lookahead window and emails a reminder for each, marking them so a
// session is reminded at most once. A failed send leaves the flag unset
// and is retried on the next tick while the session is still inside the
// window; once its start passes it silently drops out of the due-set.
type ReminderScheduler struct {
	store     sessionStore
	email     reminderSender
	publisher *events.Publisher

	recipient       string
	interval        time.Duration
	lookahead       time.Duration
	dispatchTimeout time.Duration

	stopChan chan struct{}
	sweepMu  sync.Mutex
}

func NewReminderScheduler(store sessionStore, email reminderSender, publisher *events.Publisher, recipient string, interval, lookahead time.Duration) *ReminderScheduler {
	return &ReminderScheduler{
		store:           store,
		email:           email,
		publisher:       publisher,
		recipient:       recipient,
		interval:        interval,
		lookahead:       lookahead,
		dispatchTimeout: defaultDispatchTimeout,
		stopChan:        make(chan struct{}),
	}
}

func (s *ReminderScheduler) Start() {
	if s.store == nil || s.email == nil {
		return
	}

	go s.loop()
	log.Printf("Reminder scheduler started (every %s, %s lookahead)", s.interval, s.lookahead)
}

func (s *ReminderScheduler) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
}

func (s *ReminderScheduler) loop() {
	// Run on startup as well as by interval.
	s.tick(context.Background(), time.Now())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.tick(context.Background(), time.Now())
		}
	}
}

// tick runs one sweep. Ticks never overlap: if the previous sweep is
// still running when the ticker fires, this one is skipped.
func (s *ReminderScheduler) tick(ctx context.Context, now time.Time) {
	if !s.sweepMu.TryLock() {
		log.Printf("reminder sweep: previous run still in progress, skipping tick")
		return
	}
	defer s.sweepMu.Unlock()

	s.Sweep(ctx, now)
}

// Sweep processes the due-set once. Each session's dispatch and mark is
// an independent unit of work; one failure never aborts the rest.
func (s *ReminderScheduler) Sweep(ctx context.Context, now time.Time) {
	horizon := now.Add(s.lookahead)

	due, err := s.store.DueForReminder(ctx, now, horizon)
	if err != nil {
		log.Printf("reminder sweep: failed to load due sessions: %v", err)
		return
	}

	for _, session := range due {
		resourceTitle := ""
		if session.Resource != nil {
			resourceTitle = session.Resource.Title
		}

		if err := s.dispatch(session.Title, resourceTitle, session.StartTime); err != nil {
			log.Printf("reminder sweep: failed to send reminder for session %s: %v", session.ID, err)
			continue
		}

		marked, err := s.store.MarkReminderSent(ctx, session.ID)
		if err != nil {
			log.Printf("reminder sweep: failed to mark session %s as reminded: %v", session.ID, err)
			continue
		}

		if marked {
			log.Printf("reminder sweep: reminder sent for session %q", session.Title)
			s.publisher.Publish(ctx, events.TypeReminderSent, session.ID)
		}
	}
}

// dispatch bounds a single send so one stalled SMTP conversation cannot
// hold up the whole sweep. net/smtp has no context support, so the send
// runs in its own goroutine and is abandoned on timeout.
func (s *ReminderScheduler) dispatch(sessionTitle, resourceTitle string, startsAt time.Time) error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- s.email.SendSessionReminderEmail(s.recipient, sessionTitle, resourceTitle, startsAt)
	}()

	timer := time.NewTimer(s.dispatchTimeout)
	defer timer.Stop()

	select {
	case err := <-errChan:
		return err
	case <-timer.C:
		return &DependencyError{Message: "reminder dispatch timed out"}
	}
}
