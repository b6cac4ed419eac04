package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"studyplanner-backend/internal/models"
	"studyplanner-backend/internal/schedule"
)

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.StudySession
}

func newFakeSessionStore(sessions ...*models.StudySession) *fakeSessionStore {
	store := &fakeSessionStore{sessions: make(map[uuid.UUID]*models.StudySession)}
	for _, s := range sessions {
		store.sessions[s.ID] = s
	}
	return store
}

func (f *fakeSessionStore) DueForReminder(ctx context.Context, now, horizon time.Time) ([]models.StudySession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	due := []models.StudySession{}
	for _, s := range f.sessions {
		if schedule.DueForReminder(*s, now, horizon) {
			due = append(due, *s)
		}
	}
	return due, nil
}

func (f *fakeSessionStore) MarkReminderSent(ctx context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[id]
	if !ok || s.ReminderSent {
		return false, nil
	}
	s.ReminderSent = true
	return true, nil
}

type fakeSender struct {
	mu     sync.Mutex
	sent   []string
	failOn map[string]error
}

func (f *fakeSender) SendSessionReminderEmail(to, sessionTitle, resourceTitle string, startsAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.failOn[sessionTitle]; ok {
		return err
	}
	f.sent = append(f.sent, sessionTitle)
	return nil
}

func (f *fakeSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func testSession(title string, start time.Time, completed bool) *models.StudySession {
	return &models.StudySession{
		ID:          uuid.New(),
		Title:       title,
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		IsCompleted: completed,
	}
}

func newTestScheduler(store *fakeSessionStore, sender *fakeSender) *ReminderScheduler {
	return NewReminderScheduler(store, sender, nil, "student@example.com", time.Minute, 15*time.Minute)
}

func TestSweep_SendsAndMarksDueSessions(t *testing.T) {
	now := time.Date(2026, 3, 12, 12, 0, 0, 0, time.UTC)

	due := testSession("Read Ch.4", now.Add(10*time.Minute), false)
	completed := testSession("Already done", now.Add(10*time.Minute), true)
	farOff := testSession("Later today", now.Add(2*time.Hour), false)

	store := newFakeSessionStore(due, completed, farOff)
	sender := &fakeSender{}

	newTestScheduler(store, sender).Sweep(context.Background(), now)

	if sender.sentCount() != 1 {
		t.Fatalf("Expected exactly 1 reminder sent, got %d", sender.sentCount())
	}
	if sender.sent[0] != "Read Ch.4" {
		t.Errorf("Expected reminder for 'Read Ch.4', got %q", sender.sent[0])
	}
	if !store.sessions[due.ID].ReminderSent {
		t.Errorf("Expected due session to be marked as reminded")
	}
	if store.sessions[completed.ID].ReminderSent {
		t.Errorf("Expected completed session to stay unmarked")
	}
	if store.sessions[farOff.ID].ReminderSent {
		t.Errorf("Expected session beyond the horizon to stay unmarked")
	}
}

func TestSweep_RepeatedSweepsAreIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 12, 12, 0, 0, 0, time.UTC)

	due := testSession("Read Ch.4", now.Add(10*time.Minute), false)
	store := newFakeSessionStore(due)
	sender := &fakeSender{}
	scheduler := newTestScheduler(store, sender)

	scheduler.Sweep(context.Background(), now)
	scheduler.Sweep(context.Background(), now)
	scheduler.Sweep(context.Background(), now.Add(time.Minute))

	if sender.sentCount() != 1 {
		t.Errorf("Expected 1 reminder across repeated sweeps, got %d", sender.sentCount())
	}
}

func TestSweep_DispatchFailureDoesNotAbortOthers(t *testing.T) {
	now := time.Date(2026, 3, 12, 12, 0, 0, 0, time.UTC)

	failing := testSession("Flaky", now.Add(5*time.Minute), false)
	healthy := testSession("Healthy", now.Add(10*time.Minute), false)

	store := newFakeSessionStore(failing, healthy)
	sender := &fakeSender{failOn: map[string]error{"Flaky": errors.New("smtp down")}}
	scheduler := newTestScheduler(store, sender)

	scheduler.Sweep(context.Background(), now)

	if sender.sentCount() != 1 || sender.sent[0] != "Healthy" {
		t.Fatalf("Expected only 'Healthy' to be sent, got %v", sender.sent)
	}
	if store.sessions[failing.ID].ReminderSent {
		t.Errorf("Expected failed dispatch to leave reminder_sent unset")
	}
	if !store.sessions[healthy.ID].ReminderSent {
		t.Errorf("Expected healthy session to be marked")
	}

	// Next tick retries the failed one.
	delete(sender.failOn, "Flaky")
	scheduler.Sweep(context.Background(), now.Add(time.Minute))

	if !store.sessions[failing.ID].ReminderSent {
		t.Errorf("Expected failed session to be retried and marked on the next tick")
	}
	if sender.sentCount() != 2 {
		t.Errorf("Expected 2 total sends after retry, got %d", sender.sentCount())
	}
}

func TestSweep_MissedWindowIsDropped(t *testing.T) {
	now := time.Date(2026, 3, 12, 12, 0, 0, 0, time.UTC)

	missed := testSession("Missed", now.Add(-time.Minute), false)
	store := newFakeSessionStore(missed)
	sender := &fakeSender{}

	newTestScheduler(store, sender).Sweep(context.Background(), now)

	if sender.sentCount() != 0 {
		t.Errorf("Expected no reminder for a session whose start already passed")
	}
	if store.sessions[missed.ID].ReminderSent {
		t.Errorf("Expected missed session to stay unmarked")
	}
}

func TestDispatch_TimesOut(t *testing.T) {
	store := newFakeSessionStore()
	scheduler := NewReminderScheduler(store, &slowSender{delay: 50 * time.Millisecond}, nil, "student@example.com", time.Minute, 15*time.Minute)
	scheduler.dispatchTimeout = 5 * time.Millisecond

	err := scheduler.dispatch("Slow", "", time.Now())
	var depErr *DependencyError
	if !errors.As(err, &depErr) {
		t.Fatalf("Expected DependencyError on timeout, got %v", err)
	}
}

type slowSender struct{ delay time.Duration }

func (s *slowSender) SendSessionReminderEmail(to, sessionTitle, resourceTitle string, startsAt time.Time) error {
	time.Sleep(s.delay)
	return nil
}
