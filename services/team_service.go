package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/club-system/models"
	"github.com/Dosada05/club-system/repositories"
	"github.com/google/uuid"
)

// TeamService владеет составом команды и гарантирует инвариант
// "в непустой команде всегда есть хотя бы один тренер" на каждой мутации.
type TeamService interface {
	CreateTeam(ctx context.Context, input CreateTeamInput, creatorID string) (*models.Team, error)
	GetTeamByID(ctx context.Context, teamID string) (*models.Team, error)
	ListTeamsByMember(ctx context.Context, userID string) ([]*models.Team, error)
	AddMember(ctx context.Context, teamID, userID string, role models.MemberRole, actorID string) (*models.Team, error)
	ChangeRole(ctx context.Context, teamID, userID string, newRole models.MemberRole, actorID string) (*models.Team, error)
	RemoveMember(ctx context.Context, teamID, userID, actorID string) (*models.Team, error)
	DeleteTeam(ctx context.Context, teamID, actorID string) error
}

type CreateTeamInput struct {
	Name     string  `json:"name"`
	Category *string `json:"category"`
}

type teamService struct {
	teamRepo repositories.TeamRepository
	userRepo repositories.UserRepository
	notifier Notifier
	clock    Clock
	logger   *slog.Logger
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	notifier Notifier,
	clock Clock,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		teamRepo: teamRepo,
		userRepo: userRepo,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, input CreateTeamInput, creatorID string) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	if _, err := s.userRepo.GetByID(ctx, creatorID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to check creator %q: %w", creatorID, err)
	}

	now := s.clock.Now()
	team := &models.Team{
		ID:        uuid.NewString(),
		Name:      name,
		Category:  input.Category,
		CreatorID: creatorID,
		// Создатель сразу становится тренером: инвариант выполняется с первой записи.
		Roster: map[string]models.RosterEntry{
			creatorID: {Role: models.RoleTrainer, JoinedAt: now},
		},
		CreatedAt: now,
	}

	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

func (s *teamService) GetTeamByID(ctx context.Context, teamID string) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get team %q: %w", teamID, err)
	}
	return team, nil
}

func (s *teamService) ListTeamsByMember(ctx context.Context, userID string) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for user %q: %w", userID, err)
	}
	return teams, nil
}

func (s *teamService) AddMember(ctx context.Context, teamID, userID string, role models.MemberRole, actorID string) (*models.Team, error) {
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to check user %q: %w", userID, err)
	}

	// Проверки выполняются по свежему чтению непосредственно перед записью,
	// запись обусловлена версией прочитанного документа.
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		team, err := s.GetTeamByID(ctx, teamID)
		if err != nil {
			return nil, err
		}

		if entry, ok := team.Roster[actorID]; !ok || entry.Role != models.RoleTrainer {
			return nil, ErrTrainerActionOnly
		}
		if team.HasMember(userID) {
			return nil, ErrAlreadyMember
		}

		team.Roster[userID] = models.RosterEntry{
			Role:     role,
			JoinedAt: s.clock.Now(),
			AddedBy:  &actorID,
		}

		err = s.teamRepo.Update(ctx, team)
		if err == nil {
			return team, nil
		}
		if !errors.Is(err, repositories.ErrVersionConflict) {
			return nil, fmt.Errorf("failed to add member to team %q: %w", teamID, err)
		}
	}
	return nil, ErrConflict
}

func (s *teamService) ChangeRole(ctx context.Context, teamID, userID string, newRole models.MemberRole, actorID string) (*models.Team, error) {
	if !newRole.IsValid() {
		return nil, ErrInvalidRole
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		team, err := s.GetTeamByID(ctx, teamID)
		if err != nil {
			return nil, err
		}

		if entry, ok := team.Roster[actorID]; !ok || entry.Role != models.RoleTrainer {
			return nil, ErrTrainerActionOnly
		}
		entry, ok := team.Roster[userID]
		if !ok {
			return nil, ErrNotAMember
		}
		// Счётчик тренеров берётся из живого состояния, не из кэша:
		// два конкурентных понижения не могут оба увидеть "двух тренеров".
		if newRole != models.RoleTrainer && team.IsSoleTrainer(userID) {
			return nil, ErrLastTrainer
		}
		if entry.Role == newRole {
			return team, nil
		}

		entry.Role = newRole
		team.Roster[userID] = entry

		err = s.teamRepo.Update(ctx, team)
		if err == nil {
			s.notifyRoleChanged(ctx, team, userID, newRole)
			return team, nil
		}
		if !errors.Is(err, repositories.ErrVersionConflict) {
			return nil, fmt.Errorf("failed to change role in team %q: %w", teamID, err)
		}
	}
	return nil, ErrConflict
}

func (s *teamService) RemoveMember(ctx context.Context, teamID, userID, actorID string) (*models.Team, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		team, err := s.GetTeamByID(ctx, teamID)
		if err != nil {
			return nil, err
		}

		// Выйти из команды самостоятельно может любой участник,
		// удалять других — только тренер.
		if actorID != userID {
			if entry, ok := team.Roster[actorID]; !ok || entry.Role != models.RoleTrainer {
				return nil, ErrTrainerActionOnly
			}
		}
		if !team.HasMember(userID) {
			return nil, ErrNotAMember
		}
		// Удаление и понижение используют один предикат — поведение согласовано.
		if !models.CanLeave(team, userID) {
			return nil, ErrLastTrainer
		}

		delete(team.Roster, userID)

		err = s.teamRepo.Update(ctx, team)
		if err == nil {
			return team, nil
		}
		if !errors.Is(err, repositories.ErrVersionConflict) {
			return nil, fmt.Errorf("failed to remove member from team %q: %w", teamID, err)
		}
	}
	return nil, ErrConflict
}

func (s *teamService) DeleteTeam(ctx context.Context, teamID, actorID string) error {
	team, err := s.GetTeamByID(ctx, teamID)
	if err != nil {
		return err
	}

	if !models.CanDelete(team, actorID) {
		return ErrTeamDeleteForbidden
	}

	// Членство каскадно умирает вместе с документом команды.
	// История посещаемости сохраняется для аудита под осиротевшим teamID.
	if err := s.teamRepo.Delete(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete team %q: %w", teamID, err)
	}
	s.logger.InfoContext(ctx, "team deleted", slog.String("team_id", teamID), slog.String("actor_id", actorID))
	return nil
}

func (s *teamService) notifyRoleChanged(ctx context.Context, team *models.Team, userID string, newRole models.MemberRole) {
	s.notifier.Notify(ctx, models.Notification{
		Kind:        models.NotificationRoleChanged,
		RecipientID: userID,
		Payload: map[string]interface{}{
			"team_id":   team.ID,
			"team_name": team.Name,
			"new_role":  newRole,
		},
	})
}
