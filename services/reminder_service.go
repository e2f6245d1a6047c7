package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/club-system/models"
	"github.com/Dosada05/club-system/repositories"
	"golang.org/x/sync/errgroup"
)

// sweepConcurrency ограничивает параллелизм обработки событий в одном проходе.
const sweepConcurrency = 8

// ReminderService — тот самый внешний процесс, управляемый временем:
// переключает sent у созревших напоминаний и эмитит ReminderDue подтвердившим
// участие. Движок участия записи напоминаний не трогает.
type ReminderService interface {
	SweepDueReminders(ctx context.Context) error
}

type reminderService struct {
	eventRepo repositories.EventRepository
	notifier  Notifier
	clock     Clock
	logger    *slog.Logger
}

func NewReminderService(
	eventRepo repositories.EventRepository,
	notifier Notifier,
	clock Clock,
	logger *slog.Logger,
) ReminderService {
	return &reminderService{
		eventRepo: eventRepo,
		notifier:  notifier,
		clock:     clock,
		logger:    logger,
	}
}

// SweepDueReminders обходит события с неотправленными напоминаниями.
// Каждое sent переключается ровно один раз: запись условная по версии,
// проигранная гонка ведёт к перечитыванию события.
func (s *reminderService) SweepDueReminders(ctx context.Context) error {
	events, err := s.eventRepo.ListWithUnsentReminders(ctx)
	if err != nil {
		return fmt.Errorf("failed to list events for reminder sweep: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)

	for _, event := range events {
		eventID := event.ID
		g.Go(func() error {
			if err := s.sweepEvent(gCtx, eventID); err != nil {
				s.logger.ErrorContext(gCtx, "reminder sweep failed for event",
					slog.String("event_id", eventID),
					slog.Any("error", err),
				)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *reminderService) sweepEvent(ctx context.Context, eventID string) error {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		event, err := s.eventRepo.GetByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, repositories.ErrEventNotFound) {
				return nil // событие удалили между листингом и обработкой
			}
			return err
		}

		now := s.clock.Now()
		due := dueReminderIndexes(event, now)
		if len(due) == 0 {
			return nil
		}

		for _, i := range due {
			event.Reminders[i].Sent = true
		}

		err = s.eventRepo.Update(ctx, event)
		if err == nil {
			s.notifyReminderDue(ctx, event)
			return nil
		}
		if !errors.Is(err, repositories.ErrVersionConflict) {
			return fmt.Errorf("failed to mark reminders sent for event %q: %w", eventID, err)
		}
	}
	return ErrConflict
}

// dueReminderIndexes возвращает индексы созревших неотправленных напоминаний.
// Напоминание после начала события не эмитится, но помечается отправленным,
// чтобы не оживать на следующих проходах.
func dueReminderIndexes(event *models.Event, now time.Time) []int {
	start := event.StartAt()
	due := make([]int, 0, len(event.Reminders))
	for i, reminder := range event.Reminders {
		if reminder.Sent {
			continue
		}
		fireAt := start.Add(-time.Duration(reminder.MinutesBefore) * time.Minute)
		if !now.Before(fireAt) {
			due = append(due, i)
		}
	}
	return due
}

func (s *reminderService) notifyReminderDue(ctx context.Context, event *models.Event) {
	if !s.clock.Now().Before(event.StartAt()) {
		return
	}
	for _, userID := range event.ConfirmedUserIDs() {
		s.notifier.Notify(ctx, models.Notification{
			Kind:        models.NotificationReminderDue,
			RecipientID: userID,
			Payload: map[string]interface{}{
				"event_id":    event.ID,
				"event_title": event.Title,
				"starts_at":   event.StartAt(),
			},
		})
	}
}
