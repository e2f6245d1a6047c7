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

// recentTrendLimit — сколько последних статусов попадает в тренд участника.
const recentTrendLimit = 5

// AttendanceService превращает карту статусов в денормализованную статистику
// сессии и сворачивает множество сессий в сводные показатели. Счётчики всегда
// пересчитываются из records внутри пути записи и никогда не принимаются извне.
type AttendanceService interface {
	CreateSession(ctx context.Context, input CreateSessionInput, actorID string) (*models.AttendanceSession, error)
	GetSessionByID(ctx context.Context, sessionID string) (*models.AttendanceSession, error)
	UpdateSession(ctx context.Context, sessionID string, records map[string]models.AttendanceRecord, actorID string) (*models.AttendanceSession, error)
	DeleteSession(ctx context.Context, sessionID, actorID string) error
	TeamStats(ctx context.Context, teamID string, filter repositories.SessionFilter) (*models.AttendanceStats, error)
	MemberStats(ctx context.Context, teamID, userID string, filter repositories.SessionFilter) (*models.AttendanceStats, error)
}

type CreateSessionInput struct {
	TeamID      string                             `json:"team_id"`
	EventID     *string                            `json:"event_id"`
	SessionDate time.Time                          `json:"session_date"`
	SessionType string                             `json:"session_type"`
	Records     map[string]models.AttendanceRecord `json:"records"`
	// SeedFromEvent заполняет records статусом present по подтверждённым
	// ответам указанного события, если явные записи не переданы.
	SeedFromEvent bool `json:"seed_from_event"`
}

type attendanceService struct {
	sessionRepo repositories.SessionRepository
	teamRepo    repositories.TeamRepository
	eventRepo   repositories.EventRepository
	clock       Clock
}

func NewAttendanceService(
	sessionRepo repositories.SessionRepository,
	teamRepo repositories.TeamRepository,
	eventRepo repositories.EventRepository,
	clock Clock,
) AttendanceService {
	return &attendanceService{
		sessionRepo: sessionRepo,
		teamRepo:    teamRepo,
		eventRepo:   eventRepo,
		clock:       clock,
	}
}

func validateRecords(records map[string]models.AttendanceRecord) error {
	for userID, record := range records {
		if !record.Status.IsValid() {
			return fmt.Errorf("%w: user %q has status %q", ErrInvalidAttendanceStatus, userID, record.Status)
		}
	}
	return nil
}

func (s *attendanceService) CreateSession(ctx context.Context, input CreateSessionInput, actorID string) (*models.AttendanceSession, error) {
	if strings.TrimSpace(input.SessionType) == "" {
		return nil, ErrSessionTypeRequired
	}

	team, err := s.teamRepo.GetByID(ctx, input.TeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get team %q: %w", input.TeamID, err)
	}
	// Посещаемость снимает участник состава.
	if !team.HasMember(actorID) {
		return nil, ErrNotAMember
	}

	records := input.Records
	if records == nil {
		records = make(map[string]models.AttendanceRecord)
	}
	if err := validateRecords(records); err != nil {
		return nil, err
	}

	if input.SeedFromEvent && input.EventID != nil && len(records) == 0 {
		event, err := s.eventRepo.GetByID(ctx, *input.EventID)
		if err != nil {
			if errors.Is(err, repositories.ErrEventNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to get event %q: %w", *input.EventID, err)
		}
		for _, userID := range event.ConfirmedUserIDs() {
			records[userID] = models.AttendanceRecord{Status: models.AttendancePresent}
		}
	}

	sessionDate := input.SessionDate
	if sessionDate.IsZero() {
		sessionDate = s.clock.Now()
	}

	session := &models.AttendanceSession{
		ID:          uuid.NewString(),
		TeamID:      input.TeamID,
		EventID:     input.EventID,
		SessionDate: sessionDate,
		SessionType: input.SessionType,
		Records:     records,
		Summary:     models.SummarizeAttendance(records),
		CreatedBy:   actorID,
		CreatedAt:   s.clock.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create attendance session: %w", err)
	}
	return session, nil
}

func (s *attendanceService) GetSessionByID(ctx context.Context, sessionID string) (*models.AttendanceSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get attendance session %q: %w", sessionID, err)
	}
	return session, nil
}

// UpdateSession заменяет records целиком и пересчитывает производные поля.
// Инкрементальных правок счётчиков не существует как класса операций.
func (s *attendanceService) UpdateSession(ctx context.Context, sessionID string, records map[string]models.AttendanceRecord, actorID string) (*models.AttendanceSession, error) {
	if records == nil {
		records = make(map[string]models.AttendanceRecord)
	}
	if err := validateRecords(records); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		session, err := s.GetSessionByID(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		team, err := s.teamRepo.GetByID(ctx, session.TeamID)
		if err == nil && !team.HasMember(actorID) {
			return nil, ErrNotAMember
		}

		session.Records = records
		session.Summary = models.SummarizeAttendance(records)

		err = s.sessionRepo.Update(ctx, session)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, repositories.ErrVersionConflict) {
			return nil, fmt.Errorf("failed to update attendance session %q: %w", sessionID, err)
		}
	}
	return nil, ErrConflict
}

func (s *attendanceService) DeleteSession(ctx context.Context, sessionID, actorID string) error {
	session, err := s.GetSessionByID(ctx, sessionID)
	if err != nil {
		return err
	}

	team, err := s.teamRepo.GetByID(ctx, session.TeamID)
	if err == nil {
		role, ok := team.RoleOf(actorID)
		if !ok || (role != models.RoleTrainer && session.CreatedBy != actorID) {
			return ErrEventActionForbidden
		}
	}

	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete attendance session %q: %w", sessionID, err)
	}
	return nil
}

func (s *attendanceService) TeamStats(ctx context.Context, teamID string, filter repositories.SessionFilter) (*models.AttendanceStats, error) {
	sessions, err := s.sessionRepo.ListByTeam(ctx, teamID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for team %q: %w", teamID, err)
	}
	stats := ComputeTeamStats(sessions)
	return &stats, nil
}

func (s *attendanceService) MemberStats(ctx context.Context, teamID, userID string, filter repositories.SessionFilter) (*models.AttendanceStats, error) {
	sessions, err := s.sessionRepo.ListByTeam(ctx, teamID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for team %q: %w", teamID, err)
	}
	stats := ComputeMemberStats(sessions, userID)
	return &stats, nil
}

// attendanceRate — общий знаменатель: present/(present+absent+late+excused)*100.
func attendanceRate(present, absent, late, excused int) float64 {
	total := present + absent + late + excused
	if total == 0 {
		return 0
	}
	return float64(present) / float64(total) * 100
}

// ComputeTeamStats сворачивает счётчики сессий в сводную статистику команды
// с разбивкой по типам сессий. Чистая функция над переданным срезом.
func ComputeTeamStats(sessions []*models.AttendanceSession) models.AttendanceStats {
	stats := models.AttendanceStats{
		TotalSessions: len(sessions),
		ByType:        make(map[string]models.TypeBreakdown),
	}

	for _, session := range sessions {
		summary := session.Summary
		stats.Present += summary.PresentCount
		stats.Absent += summary.AbsentCount
		stats.Late += summary.LateCount
		stats.Excused += summary.ExcusedCount

		breakdown := stats.ByType[session.SessionType]
		breakdown.Sessions++
		breakdown.Present += summary.PresentCount
		breakdown.Absent += summary.AbsentCount
		breakdown.Late += summary.LateCount
		breakdown.Excused += summary.ExcusedCount
		stats.ByType[session.SessionType] = breakdown
	}

	stats.AttendanceRate = attendanceRate(stats.Present, stats.Absent, stats.Late, stats.Excused)
	for sessionType, breakdown := range stats.ByType {
		breakdown.AttendanceRate = attendanceRate(breakdown.Present, breakdown.Absent, breakdown.Late, breakdown.Excused)
		stats.ByType[sessionType] = breakdown
	}
	return stats
}

// ComputeMemberStats считает личную статистику участника по сессиям в порядке
// от самой свежей к самой старой (порядок задаёт вызывающая сторона).
// Сессия без записи об участнике в статистику не входит: отсутствие должно
// быть отмечено явно, а не выведено.
func ComputeMemberStats(sessions []*models.AttendanceSession, userID string) models.AttendanceStats {
	stats := models.AttendanceStats{}

	currentBroken := false
	run := 0
	for _, session := range sessions {
		record, ok := session.Records[userID]
		if !ok {
			continue
		}

		stats.TotalSessions++
		switch record.Status {
		case models.AttendancePresent:
			stats.Present++
		case models.AttendanceAbsent:
			stats.Absent++
		case models.AttendanceLate:
			stats.Late++
		case models.AttendanceExcused:
			stats.Excused++
		}

		if record.Status == models.AttendancePresent {
			run++
			if run > stats.LongestStreak {
				stats.LongestStreak = run
			}
			if !currentBroken {
				stats.CurrentStreak++
			}
		} else {
			run = 0
			currentBroken = true
		}

		if len(stats.RecentTrend) < recentTrendLimit {
			stats.RecentTrend = append(stats.RecentTrend, record.Status)
		}
	}

	stats.AttendanceRate = attendanceRate(stats.Present, stats.Absent, stats.Late, stats.Excused)
	return stats
}
