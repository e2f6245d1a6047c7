package services

import (
	"context"
	"sync"
	"time"

	"github.com/Dosada05/club-system/models"
	"github.com/Dosada05/club-system/repositories"
)

// fakeClock — управляемые часы для проверок периода заморозки и дедлайнов.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// recordingNotifier накапливает эмитированные уведомления.
type recordingNotifier struct {
	mu            sync.Mutex
	notifications []models.Notification
}

func (n *recordingNotifier) Notify(ctx context.Context, notification models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, notification)
}

func (n *recordingNotifier) byKind(kind models.NotificationKind) []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var result []models.Notification
	for _, notification := range n.notifications {
		if notification.Kind == kind {
			result = append(result, notification)
		}
	}
	return result
}

// Фейковые репозитории повторяют условную запись по версии: обновление
// проходит только при совпадении версии, иначе ErrVersionConflict.
// failUpdates > 0 навязывает конфликт первым N обновлениям, чтобы проверять
// ветки повторов и ErrConflict.

type fakeTeamRepo struct {
	mu          sync.Mutex
	teams       map[string]*models.Team
	failUpdates int
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[string]*models.Team)}
}

func copyTeam(team *models.Team) *models.Team {
	clone := *team
	clone.Roster = make(map[string]models.RosterEntry, len(team.Roster))
	for userID, entry := range team.Roster {
		clone.Roster[userID] = entry
	}
	return &clone
}

func (r *fakeTeamRepo) Create(ctx context.Context, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	team.Version = 1
	r.teams[team.ID] = copyTeam(team)
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id string) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return copyTeam(team), nil
}

func (r *fakeTeamRepo) Update(ctx context.Context, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.teams[team.ID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	if r.failUpdates > 0 {
		r.failUpdates--
		return repositories.ErrVersionConflict
	}
	if stored.Version != team.Version {
		return repositories.ErrVersionConflict
	}
	team.Version++
	r.teams[team.ID] = copyTeam(team)
	return nil
}

func (r *fakeTeamRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.teams, id)
	return nil
}

func (r *fakeTeamRepo) ListByMember(ctx context.Context, userID string) ([]*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*models.Team, 0)
	for _, team := range r.teams {
		if _, ok := team.Roster[userID]; ok {
			result = append(result, copyTeam(team))
		}
	}
	return result, nil
}

type fakeEventRepo struct {
	mu          sync.Mutex
	events      map[string]*models.Event
	failUpdates int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[string]*models.Event)}
}

func copyEvent(event *models.Event) *models.Event {
	clone := *event
	clone.Responses = make(map[string]models.RSVPResponse, len(event.Responses))
	for userID, resp := range event.Responses {
		clone.Responses[userID] = resp
	}
	clone.Waitlist = append([]string(nil), event.Waitlist...)
	clone.Reminders = append([]models.Reminder(nil), event.Reminders...)
	return &clone
}

func (r *fakeEventRepo) Create(ctx context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.Version = 1
	r.events[event.ID] = copyEvent(event)
	return nil
}

func (r *fakeEventRepo) GetByID(ctx context.Context, id string) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	return copyEvent(event), nil
}

func (r *fakeEventRepo) Update(ctx context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.events[event.ID]
	if !ok {
		return repositories.ErrEventNotFound
	}
	if r.failUpdates > 0 {
		r.failUpdates--
		return repositories.ErrVersionConflict
	}
	if stored.Version != event.Version {
		return repositories.ErrVersionConflict
	}
	event.Version++
	r.events[event.ID] = copyEvent(event)
	return nil
}

func (r *fakeEventRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return repositories.ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *fakeEventRepo) ListByTeam(ctx context.Context, teamID string) ([]*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*models.Event, 0)
	for _, event := range r.events {
		if event.TeamID != nil && *event.TeamID == teamID {
			result = append(result, copyEvent(event))
		}
	}
	return result, nil
}

func (r *fakeEventRepo) ListWithUnsentReminders(ctx context.Context) ([]*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*models.Event, 0)
	for _, event := range r.events {
		for _, reminder := range event.Reminders {
			if !reminder.Sent {
				result = append(result, copyEvent(event))
				break
			}
		}
	}
	return result, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.AttendanceSession
	// порядок вставки, от новых к старым выдаёт ListByTeam
	order       []string
	failUpdates int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*models.AttendanceSession)}
}

func copySession(session *models.AttendanceSession) *models.AttendanceSession {
	clone := *session
	clone.Records = make(map[string]models.AttendanceRecord, len(session.Records))
	for userID, record := range session.Records {
		clone.Records[userID] = record
	}
	return &clone
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *models.AttendanceSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session.Version = 1
	r.sessions[session.ID] = copySession(session)
	r.order = append(r.order, session.ID)
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id string) (*models.AttendanceSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	return copySession(session), nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *models.AttendanceSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sessions[session.ID]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	if r.failUpdates > 0 {
		r.failUpdates--
		return repositories.ErrVersionConflict
	}
	if stored.Version != session.Version {
		return repositories.ErrVersionConflict
	}
	session.Version++
	r.sessions[session.ID] = copySession(session)
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return repositories.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) ListByTeam(ctx context.Context, teamID string, filter repositories.SessionFilter) ([]*models.AttendanceSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*models.AttendanceSession, 0)
	// обход в обратном порядке вставки: от свежих к старым
	for i := len(r.order) - 1; i >= 0; i-- {
		session, ok := r.sessions[r.order[i]]
		if !ok || session.TeamID != teamID {
			continue
		}
		if filter.From != nil && session.SessionDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && session.SessionDate.After(*filter.To) {
			continue
		}
		if filter.SessionType != nil && session.SessionType != *filter.SessionType {
			continue
		}
		result = append(result, copySession(session))
	}
	return result, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo(ids ...string) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, id := range ids {
		repo.users[id] = &models.User{ID: id, Email: id + "@example.com"}
	}
	return repo
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}
