package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/club-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventServiceForTest(t *testing.T) (EventService, *fakeEventRepo, *fakeTeamRepo, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	eventRepo := newFakeEventRepo()
	teamRepo := newFakeTeamRepo()
	return NewEventService(eventRepo, teamRepo, clock), eventRepo, teamRepo, clock
}

func seedTeam(t *testing.T, repo *fakeTeamRepo, roles map[string]models.MemberRole) {
	t.Helper()
	roster := make(map[string]models.RosterEntry, len(roles))
	creatorID := ""
	for id, role := range roles {
		roster[id] = models.RosterEntry{Role: role}
		if role == models.RoleTrainer && creatorID == "" {
			creatorID = id
		}
	}
	team := &models.Team{ID: "team-1", Name: "FC Sparta", CreatorID: creatorID, Roster: roster}
	require.NoError(t, repo.Create(context.Background(), team))
}

func validInput(clock *fakeClock) CreateEventInput {
	start := clock.now.Add(48 * time.Hour)
	return CreateEventInput{
		TeamID:    strPtr("team-1"),
		Title:     "Weekly training",
		Date:      start,
		StartTime: &start,
	}
}

func TestCreateEvent(t *testing.T) {
	svc, eventRepo, teamRepo, clock := newEventServiceForTest(t)
	seedTeam(t, teamRepo, map[string]models.MemberRole{"trainer-1": models.RoleTrainer})
	ctx := context.Background()

	input := validInput(clock)
	input.Capacity = intPtr(16)
	input.LockPeriod = models.LockPeriod{Enabled: true, MinutesBeforeStart: 60}
	input.Reminders = []int{1440, 60}

	event, err := svc.CreateEvent(ctx, input, "trainer-1")
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "trainer-1", event.CreatedBy)
	assert.Empty(t, event.Responses)
	assert.Empty(t, event.Waitlist)
	require.Len(t, event.Reminders, 2)
	assert.Equal(t, 1440, event.Reminders[0].MinutesBefore)
	assert.False(t, event.Reminders[0].Sent)

	stored, err := eventRepo.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.Title, stored.Title)
}

func TestCreateEvent_ScopeValidation(t *testing.T) {
	svc, _, teamRepo, clock := newEventServiceForTest(t)
	seedTeam(t, teamRepo, map[string]models.MemberRole{"trainer-1": models.RoleTrainer})
	ctx := context.Background()

	t.Run("no scope", func(t *testing.T) {
		input := validInput(clock)
		input.TeamID = nil
		_, err := svc.CreateEvent(ctx, input, "trainer-1")
		assert.ErrorIs(t, err, ErrEventScopeInvalid)
	})

	t.Run("two scopes", func(t *testing.T) {
		input := validInput(clock)
		input.ClubID = strPtr("club-1")
		_, err := svc.CreateEvent(ctx, input, "trainer-1")
		assert.ErrorIs(t, err, ErrEventScopeInvalid)
	})

	t.Run("personal event needs no team", func(t *testing.T) {
		input := validInput(clock)
		input.TeamID = nil
		input.OwnerID = strPtr("u1")
		_, err := svc.CreateEvent(ctx, input, "u1")
		require.NoError(t, err)
	})
}

func TestCreateEvent_FieldValidation(t *testing.T) {
	svc, _, teamRepo, clock := newEventServiceForTest(t)
	seedTeam(t, teamRepo, map[string]models.MemberRole{"trainer-1": models.RoleTrainer})
	ctx := context.Background()

	cases := []struct {
		name    string
		mutate  func(*CreateEventInput)
		wantErr error
	}{
		{"blank title", func(i *CreateEventInput) { i.Title = "   " }, ErrEventTitleRequired},
		{"zero date", func(i *CreateEventInput) { i.Date = time.Time{} }, ErrEventDateRequired},
		{"zero capacity", func(i *CreateEventInput) { i.Capacity = intPtr(0) }, ErrInvalidCapacity},
		{"negative capacity", func(i *CreateEventInput) { i.Capacity = intPtr(-5) }, ErrInvalidCapacity},
		{"negative lock period", func(i *CreateEventInput) { i.LockPeriod.MinutesBeforeStart = -1 }, ErrInvalidLockPeriod},
		{"too many reminders", func(i *CreateEventInput) { i.Reminders = []int{1, 2, 3, 4, 5, 6} }, ErrTooManyReminders},
		{"negative reminder", func(i *CreateEventInput) { i.Reminders = []int{60, -10} }, ErrInvalidReminder},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput(clock)
			tc.mutate(&input)
			_, err := svc.CreateEvent(ctx, input, "trainer-1")
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCreateEvent_TeamRoleGate(t *testing.T) {
	svc, _, teamRepo, clock := newEventServiceForTest(t)
	seedTeam(t, teamRepo, map[string]models.MemberRole{
		"trainer-1":   models.RoleTrainer,
		"assistant-1": models.RoleAssistant,
		"m1":          models.RoleMember,
	})
	ctx := context.Background()

	t.Run("assistant allowed", func(t *testing.T) {
		_, err := svc.CreateEvent(ctx, validInput(clock), "assistant-1")
		require.NoError(t, err)
	})

	t.Run("member forbidden", func(t *testing.T) {
		_, err := svc.CreateEvent(ctx, validInput(clock), "m1")
		assert.ErrorIs(t, err, ErrEventActionForbidden)
	})

	t.Run("stranger is not a member", func(t *testing.T) {
		_, err := svc.CreateEvent(ctx, validInput(clock), "stranger")
		assert.ErrorIs(t, err, ErrNotAMember)
	})
}

func TestDeleteEvent_Permissions(t *testing.T) {
	svc, _, teamRepo, clock := newEventServiceForTest(t)
	seedTeam(t, teamRepo, map[string]models.MemberRole{
		"trainer-1":   models.RoleTrainer,
		"assistant-1": models.RoleAssistant,
	})
	ctx := context.Background()

	create := func(t *testing.T, creatorID string) string {
		t.Helper()
		event, err := svc.CreateEvent(ctx, validInput(clock), creatorID)
		require.NoError(t, err)
		return event.ID
	}

	t.Run("creator deletes", func(t *testing.T) {
		id := create(t, "assistant-1")
		require.NoError(t, svc.DeleteEvent(ctx, id, "assistant-1"))
	})

	t.Run("trainer deletes someone else's event", func(t *testing.T) {
		id := create(t, "assistant-1")
		require.NoError(t, svc.DeleteEvent(ctx, id, "trainer-1"))
	})

	t.Run("assistant cannot delete trainer's event", func(t *testing.T) {
		id := create(t, "trainer-1")
		err := svc.DeleteEvent(ctx, id, "assistant-1")
		assert.ErrorIs(t, err, ErrEventActionForbidden)
	})
}

func TestListTeamEvents(t *testing.T) {
	svc, _, teamRepo, clock := newEventServiceForTest(t)
	seedTeam(t, teamRepo, map[string]models.MemberRole{"trainer-1": models.RoleTrainer})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		input := validInput(clock)
		input.Date = clock.now.Add(time.Duration(i+1) * 24 * time.Hour)
		_, err := svc.CreateEvent(ctx, input, "trainer-1")
		require.NoError(t, err)
	}

	events, err := svc.ListTeamEvents(ctx, "team-1")
	require.NoError(t, err)
	assert.Len(t, events, 3)
}
