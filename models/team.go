package models

import "time"

// MemberRole — закрытое перечисление ролей внутри команды.
type MemberRole string

const (
	RoleTrainer   MemberRole = "trainer"
	RoleAssistant MemberRole = "assistant"
	RoleMember    MemberRole = "member"
)

func (r MemberRole) IsValid() bool {
	switch r {
	case RoleTrainer, RoleAssistant, RoleMember:
		return true
	}
	return false
}

// RosterEntry — членство одного пользователя в составе команды.
type RosterEntry struct {
	Role     MemberRole `json:"role" bson:"role"`
	JoinedAt time.Time  `json:"joined_at" bson:"joined_at"`
	AddedBy  *string    `json:"added_by,omitempty" bson:"added_by,omitempty"`
}

// Team хранит состав как единственный источник истины: карта userID -> RosterEntry.
// Плоский список участников, если он нужен внешнему потребителю, выводится на чтении (MemberIDs).
type Team struct {
	ID        string                 `json:"id" bson:"_id"`
	Name      string                 `json:"name" bson:"name"`
	Category  *string                `json:"category,omitempty" bson:"category,omitempty"`
	CreatorID string                 `json:"creator_id" bson:"creator_id"`
	Roster    map[string]RosterEntry `json:"roster" bson:"roster"`
	CreatedAt time.Time              `json:"created_at" bson:"created_at"`
	Version   int64                  `json:"-" bson:"version"`
}

// TrainerCount считается по живому состоянию состава, без кэшированных счётчиков.
func (t *Team) TrainerCount() int {
	count := 0
	for _, entry := range t.Roster {
		if entry.Role == RoleTrainer {
			count++
		}
	}
	return count
}

// IsSoleTrainer — является ли пользователь единственным тренером команды.
func (t *Team) IsSoleTrainer(userID string) bool {
	entry, ok := t.Roster[userID]
	if !ok || entry.Role != RoleTrainer {
		return false
	}
	return t.TrainerCount() == 1
}

func (t *Team) HasMember(userID string) bool {
	_, ok := t.Roster[userID]
	return ok
}

func (t *Team) RoleOf(userID string) (MemberRole, bool) {
	entry, ok := t.Roster[userID]
	return entry.Role, ok
}

// MemberIDs возвращает плоский список участников, выводимый из карты состава.
func (t *Team) MemberIDs() []string {
	ids := make([]string, 0, len(t.Roster))
	for userID := range t.Roster {
		ids = append(ids, userID)
	}
	return ids
}

// CanLeave — чистый предикат: может ли пользователь покинуть команду (или быть удалён),
// не оставив непустой состав без тренера.
func CanLeave(team *Team, userID string) bool {
	if !team.HasMember(userID) {
		return false
	}
	return !team.IsSoleTrainer(userID)
}

// CanDelete — чистый предикат удаления команды: пустая команда, единственный тренер
// удаляет сам себя, либо тренеров двое и больше. Блокируется только сценарий, когда
// единственный тренер — другой пользователь.
func CanDelete(team *Team, actorID string) bool {
	if len(team.Roster) == 0 {
		return true
	}
	trainers := team.TrainerCount()
	if trainers >= 2 {
		return true
	}
	if trainers == 1 {
		return team.IsSoleTrainer(actorID)
	}
	// Непустой состав без тренера нарушает инвариант и не должен возникать,
	// но удаление такой команды не блокируем.
	return true
}
