package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/club-system/models"
	"github.com/Dosada05/club-system/repositories"
)

// ParticipationService — машина состояний RSVP/листа ожидания для пары
// (событие, пользователь). Все проверки выполняются по свежему чтению события,
// запись обусловлена версией документа; при проигранной гонке операция
// повторяется со свежим состоянием, после maxWriteAttempts — ErrConflict.
type ParticipationService interface {
	Respond(ctx context.Context, eventID, userID string, state models.ResponseState, message *string) (*models.Event, error)
	Cancel(ctx context.Context, eventID, userID string) (*models.Event, error)
	JoinWaitlist(ctx context.Context, eventID, userID string) (*models.Event, error)
	LeaveWaitlist(ctx context.Context, eventID, userID string) (*models.Event, error)
}

type participationService struct {
	eventRepo repositories.EventRepository
	teamRepo  repositories.TeamRepository
	notifier  Notifier
	clock     Clock
	logger    *slog.Logger
}

func NewParticipationService(
	eventRepo repositories.EventRepository,
	teamRepo repositories.TeamRepository,
	notifier Notifier,
	clock Clock,
	logger *slog.Logger,
) ParticipationService {
	return &participationService{
		eventRepo: eventRepo,
		teamRepo:  teamRepo,
		notifier:  notifier,
		clock:     clock,
		logger:    logger,
	}
}

func (s *participationService) getEvent(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event %q: %w", eventID, err)
	}
	return event, nil
}

// checkMembership: для командных событий право отвечать даёт членство в составе.
// События клуба и личные события проверяет внешний слой авторизации.
func (s *participationService) checkMembership(ctx context.Context, event *models.Event, userID string) error {
	if event.TeamID == nil {
		return nil
	}
	team, err := s.teamRepo.GetByID(ctx, *event.TeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get team %q: %w", *event.TeamID, err)
	}
	if !team.HasMember(userID) {
		return ErrNotAMember
	}
	return nil
}

func (s *participationService) Respond(ctx context.Context, eventID, userID string, state models.ResponseState, message *string) (*models.Event, error) {
	if !state.IsValid() {
		return nil, ErrInvalidState
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		event, err := s.getEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if err := s.checkMembership(ctx, event, userID); err != nil {
			return nil, err
		}

		now := s.clock.Now()
		if event.IsLocked(now) {
			return nil, ErrEventLocked
		}
		if event.IsDeadlinePassed(now) {
			return nil, ErrDeadlinePassed
		}

		// Проверка вместимости — по живому счётчику подтверждений.
		// Повторное подтверждение уже подтверждённого идемпотентно и не
		// упирается в capacity.
		if state == models.StateConfirmed && event.Capacity != nil {
			existing, ok := event.Responses[userID]
			alreadyConfirmed := ok && existing.State == models.StateConfirmed
			if !alreadyConfirmed && event.ConfirmedCount() >= *event.Capacity {
				return nil, ErrEventFull
			}
		}

		// Пользователь состоит максимум в одном из {responses, waitlist}:
		// перед записью ответа убираем возможную запись в листе ожидания.
		event.RemoveFromWaitlist(userID)
		// message — UI-соглашение для declined/maybe, на состояние не влияет.
		event.Responses[userID] = models.RSVPResponse{
			State:       state,
			Message:     message,
			RespondedAt: now,
		}

		err = s.eventRepo.Update(ctx, event)
		if err == nil {
			return event, nil
		}
		if !errors.Is(err, repositories.ErrVersionConflict) {
			return nil, fmt.Errorf("failed to record response for event %q: %w", eventID, err)
		}
	}
	return nil, ErrConflict
}

func (s *participationService) Cancel(ctx context.Context, eventID, userID string) (*models.Event, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		event, err := s.getEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}

		now := s.clock.Now()
		if event.IsLocked(now) {
			return nil, ErrEventLocked
		}
		if event.IsDeadlinePassed(now) {
			return nil, ErrDeadlinePassed
		}

		response, ok := event.Responses[userID]
		if !ok {
			return nil, ErrNoResponse
		}

		delete(event.Responses, userID)

		// Продвижение из листа ожидания атомарно с отменой: обе половины
		// попадают в одну условную запись документа, частичного применения
		// не бывает.
		var promoted string
		if response.State == models.StateConfirmed && len(event.Waitlist) > 0 {
			promoted = event.Waitlist[0]
			event.Waitlist = event.Waitlist[1:]
			event.Responses[promoted] = models.RSVPResponse{
				State:       models.StateConfirmed,
				RespondedAt: now,
			}
		}

		err = s.eventRepo.Update(ctx, event)
		if err == nil {
			if promoted != "" {
				s.notifyPromoted(ctx, event, promoted)
			}
			return event, nil
		}
		if !errors.Is(err, repositories.ErrVersionConflict) {
			return nil, fmt.Errorf("failed to cancel response for event %q: %w", eventID, err)
		}
	}
	return nil, ErrConflict
}

func (s *participationService) JoinWaitlist(ctx context.Context, eventID, userID string) (*models.Event, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		event, err := s.getEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if err := s.checkMembership(ctx, event, userID); err != nil {
			return nil, err
		}

		if !event.IsFull() {
			return nil, ErrEventNotFull
		}
		if event.HasResponse(userID) {
			return nil, ErrAlreadyResponded
		}
		if event.IsWaitlisted(userID) {
			return nil, ErrAlreadyWaitlisted
		}

		// FIFO: первый вставший в очередь продвигается первым.
		event.Waitlist = append(event.Waitlist, userID)

		err = s.eventRepo.Update(ctx, event)
		if err == nil {
			return event, nil
		}
		if !errors.Is(err, repositories.ErrVersionConflict) {
			return nil, fmt.Errorf("failed to join waitlist for event %q: %w", eventID, err)
		}
	}
	return nil, ErrConflict
}

func (s *participationService) LeaveWaitlist(ctx context.Context, eventID, userID string) (*models.Event, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		event, err := s.getEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}

		if !event.RemoveFromWaitlist(userID) {
			return nil, ErrNotWaitlisted
		}

		err = s.eventRepo.Update(ctx, event)
		if err == nil {
			return event, nil
		}
		if !errors.Is(err, repositories.ErrVersionConflict) {
			return nil, fmt.Errorf("failed to leave waitlist for event %q: %w", eventID, err)
		}
	}
	return nil, ErrConflict
}

func (s *participationService) notifyPromoted(ctx context.Context, event *models.Event, userID string) {
	s.logger.InfoContext(ctx, "waitlist promotion",
		slog.String("event_id", event.ID),
		slog.String("user_id", userID),
	)
	s.notifier.Notify(ctx, models.Notification{
		Kind:        models.NotificationWaitlistPromoted,
		RecipientID: userID,
		Payload: map[string]interface{}{
			"event_id":    event.ID,
			"event_title": event.Title,
		},
	})
}
