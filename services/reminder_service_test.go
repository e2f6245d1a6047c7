package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/club-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reminderFixture struct {
	svc       ReminderService
	eventRepo *fakeEventRepo
	notifier  *recordingNotifier
	clock     *fakeClock
}

func newReminderFixture(t *testing.T) *reminderFixture {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	eventRepo := newFakeEventRepo()
	notifier := &recordingNotifier{}
	return &reminderFixture{
		svc:       NewReminderService(eventRepo, notifier, clock, testLogger()),
		eventRepo: eventRepo,
		notifier:  notifier,
		clock:     clock,
	}
}

// seedEvent создаёт событие со стартом через startIn и напоминаниями
// за указанное число минут до старта.
func (f *reminderFixture) seedEvent(t *testing.T, id string, startIn time.Duration, minutes ...int) {
	t.Helper()
	start := f.clock.now.Add(startIn)
	reminders := make([]models.Reminder, 0, len(minutes))
	for _, m := range minutes {
		reminders = append(reminders, models.Reminder{MinutesBefore: m})
	}
	event := &models.Event{
		ID:        id,
		TeamID:    strPtr("team-1"),
		Title:     "Training " + id,
		Date:      start,
		StartTime: &start,
		Responses: map[string]models.RSVPResponse{
			"u1": {State: models.StateConfirmed},
			"u2": {State: models.StateDeclined},
			"u3": {State: models.StateConfirmed},
		},
		Reminders: reminders,
		CreatedBy: "trainer-1",
	}
	require.NoError(t, f.eventRepo.Create(context.Background(), event))
}

func TestSweep_DueReminderNotifiesConfirmed(t *testing.T) {
	f := newReminderFixture(t)
	// Старт через час, напоминание за 90 минут — уже созрело.
	f.seedEvent(t, "event-1", time.Hour, 90)

	require.NoError(t, f.svc.SweepDueReminders(context.Background()))

	event, err := f.eventRepo.GetByID(context.Background(), "event-1")
	require.NoError(t, err)
	assert.True(t, event.Reminders[0].Sent)

	due := f.notifier.byKind(models.NotificationReminderDue)
	require.Len(t, due, 2)
	recipients := []string{due[0].RecipientID, due[1].RecipientID}
	assert.ElementsMatch(t, []string{"u1", "u3"}, recipients)
}

func TestSweep_NotDueLeftUntouched(t *testing.T) {
	f := newReminderFixture(t)
	// Старт через 3 часа, напоминание за 60 минут — созреет через 2 часа.
	f.seedEvent(t, "event-1", 3*time.Hour, 60)

	require.NoError(t, f.svc.SweepDueReminders(context.Background()))

	event, err := f.eventRepo.GetByID(context.Background(), "event-1")
	require.NoError(t, err)
	assert.False(t, event.Reminders[0].Sent)
	assert.Empty(t, f.notifier.byKind(models.NotificationReminderDue))
}

func TestSweep_SentExactlyOnce(t *testing.T) {
	f := newReminderFixture(t)
	f.seedEvent(t, "event-1", time.Hour, 90)
	ctx := context.Background()

	require.NoError(t, f.svc.SweepDueReminders(ctx))
	require.NoError(t, f.svc.SweepDueReminders(ctx))

	assert.Len(t, f.notifier.byKind(models.NotificationReminderDue), 2)
}

func TestSweep_MixedReminders(t *testing.T) {
	f := newReminderFixture(t)
	// Созрело только напоминание за 120 минут; за 30 минут — ещё нет.
	f.seedEvent(t, "event-1", 2*time.Hour, 120, 30)

	require.NoError(t, f.svc.SweepDueReminders(context.Background()))

	event, err := f.eventRepo.GetByID(context.Background(), "event-1")
	require.NoError(t, err)
	assert.True(t, event.Reminders[0].Sent)
	assert.False(t, event.Reminders[1].Sent)
}

// Созревшее после начала события напоминание гасится без уведомлений.
func TestSweep_StartedEventMarkedWithoutNotify(t *testing.T) {
	f := newReminderFixture(t)
	f.seedEvent(t, "event-1", -time.Hour, 30)

	require.NoError(t, f.svc.SweepDueReminders(context.Background()))

	event, err := f.eventRepo.GetByID(context.Background(), "event-1")
	require.NoError(t, err)
	assert.True(t, event.Reminders[0].Sent)
	assert.Empty(t, f.notifier.byKind(models.NotificationReminderDue))
}

func TestSweep_RetriesOnVersionConflict(t *testing.T) {
	f := newReminderFixture(t)
	f.seedEvent(t, "event-1", time.Hour, 90)
	f.eventRepo.failUpdates = maxWriteAttempts - 1

	require.NoError(t, f.svc.SweepDueReminders(context.Background()))

	event, err := f.eventRepo.GetByID(context.Background(), "event-1")
	require.NoError(t, err)
	assert.True(t, event.Reminders[0].Sent)
}

func TestSweep_ConflictAfterRetriesExhausted(t *testing.T) {
	f := newReminderFixture(t)
	f.seedEvent(t, "event-1", time.Hour, 90)
	f.eventRepo.failUpdates = maxWriteAttempts

	err := f.svc.SweepDueReminders(context.Background())
	assert.ErrorIs(t, err, ErrConflict)
}
