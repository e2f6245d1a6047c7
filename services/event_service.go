package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/club-system/models"
	"github.com/Dosada05/club-system/repositories"
	"github.com/google/uuid"
)

// EventService владеет жизненным циклом событий: создание с валидацией
// области видимости, вместимости, периода заморозки и напоминаний.
// Сами ответы и лист ожидания — зона ответственности ParticipationService.
type EventService interface {
	CreateEvent(ctx context.Context, input CreateEventInput, creatorID string) (*models.Event, error)
	GetEventByID(ctx context.Context, eventID string) (*models.Event, error)
	ListTeamEvents(ctx context.Context, teamID string) ([]*models.Event, error)
	DeleteEvent(ctx context.Context, eventID, actorID string) error
}

type CreateEventInput struct {
	TeamID          *string           `json:"team_id"`
	ClubID          *string           `json:"club_id"`
	OwnerID         *string           `json:"owner_id"`
	Title           string            `json:"title"`
	Date            time.Time         `json:"date"`
	StartTime       *time.Time        `json:"start_time"`
	DurationMinutes *int              `json:"duration_minutes"`
	Capacity        *int              `json:"capacity"`
	LockPeriod      models.LockPeriod `json:"lock_period"`
	RSVPDeadline    *time.Time        `json:"rsvp_deadline"`
	Reminders       []int             `json:"reminders"` // минуты до начала
}

type eventService struct {
	eventRepo repositories.EventRepository
	teamRepo  repositories.TeamRepository
	clock     Clock
}

func NewEventService(
	eventRepo repositories.EventRepository,
	teamRepo repositories.TeamRepository,
	clock Clock,
) EventService {
	return &eventService{
		eventRepo: eventRepo,
		teamRepo:  teamRepo,
		clock:     clock,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, input CreateEventInput, creatorID string) (*models.Event, error) {
	if err := validateEventInput(input); err != nil {
		return nil, err
	}

	// Командное событие может создать только тренер или ассистент команды.
	if input.TeamID != nil {
		team, err := s.teamRepo.GetByID(ctx, *input.TeamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to get team %q: %w", *input.TeamID, err)
		}
		role, ok := team.RoleOf(creatorID)
		if !ok {
			return nil, ErrNotAMember
		}
		if role != models.RoleTrainer && role != models.RoleAssistant {
			return nil, ErrEventActionForbidden
		}
	}

	reminders := make([]models.Reminder, 0, len(input.Reminders))
	for _, minutes := range input.Reminders {
		reminders = append(reminders, models.Reminder{MinutesBefore: minutes})
	}

	event := &models.Event{
		ID:              uuid.NewString(),
		TeamID:          input.TeamID,
		ClubID:          input.ClubID,
		OwnerID:         input.OwnerID,
		Title:           strings.TrimSpace(input.Title),
		Date:            input.Date,
		StartTime:       input.StartTime,
		DurationMinutes: input.DurationMinutes,
		Capacity:        input.Capacity,
		LockPeriod:      input.LockPeriod,
		RSVPDeadline:    input.RSVPDeadline,
		Responses:       make(map[string]models.RSVPResponse),
		Waitlist:        make([]string, 0),
		Reminders:       reminders,
		CreatedBy:       creatorID,
		CreatedAt:       s.clock.Now(),
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func validateEventInput(input CreateEventInput) error {
	scopes := 0
	if input.TeamID != nil {
		scopes++
	}
	if input.ClubID != nil {
		scopes++
	}
	if input.OwnerID != nil {
		scopes++
	}
	if scopes != 1 {
		return ErrEventScopeInvalid
	}

	if strings.TrimSpace(input.Title) == "" {
		return ErrEventTitleRequired
	}
	if input.Date.IsZero() {
		return ErrEventDateRequired
	}
	if input.Capacity != nil && *input.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	if input.LockPeriod.MinutesBeforeStart < 0 {
		return ErrInvalidLockPeriod
	}

	// Движок только валидирует лимит и неотрицательные минуты;
	// дедупликацией записей он не занимается.
	if len(input.Reminders) > models.MaxReminders {
		return fmt.Errorf("%w: at most %d allowed", ErrTooManyReminders, models.MaxReminders)
	}
	for _, minutes := range input.Reminders {
		if minutes < 0 {
			return ErrInvalidReminder
		}
	}
	return nil
}

func (s *eventService) GetEventByID(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event %q: %w", eventID, err)
	}
	return event, nil
}

func (s *eventService) ListTeamEvents(ctx context.Context, teamID string) ([]*models.Event, error) {
	events, err := s.eventRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for team %q: %w", teamID, err)
	}
	return events, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, actorID string) error {
	event, err := s.GetEventByID(ctx, eventID)
	if err != nil {
		return err
	}

	allowed := event.CreatedBy == actorID
	if !allowed && event.TeamID != nil {
		team, err := s.teamRepo.GetByID(ctx, *event.TeamID)
		if err == nil {
			if role, ok := team.RoleOf(actorID); ok && role == models.RoleTrainer {
				allowed = true
			}
		}
	}
	if !allowed {
		return ErrEventActionForbidden
	}

	// Удаление события не трогает уже снятые сессии посещаемости:
	// рвётся только связь event_id -> сессия, сами записи остаются.
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete event %q: %w", eventID, err)
	}
	return nil
}
