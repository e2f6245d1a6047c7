package models

import "time"

// ResponseState — закрытое перечисление состояний RSVP-ответа.
type ResponseState string

const (
	StateConfirmed ResponseState = "confirmed"
	StateDeclined  ResponseState = "declined"
	StateMaybe     ResponseState = "maybe"
)

func (s ResponseState) IsValid() bool {
	switch s {
	case StateConfirmed, StateDeclined, StateMaybe:
		return true
	}
	return false
}

// RSVPResponse — один ответ пользователя на событие.
type RSVPResponse struct {
	State       ResponseState `json:"state" bson:"state"`
	Message     *string       `json:"message,omitempty" bson:"message,omitempty"`
	RespondedAt time.Time     `json:"responded_at" bson:"responded_at"`
}

// LockPeriod — окно перед началом события, в котором изменения RSVP заморожены.
type LockPeriod struct {
	Enabled            bool `json:"enabled" bson:"enabled"`
	MinutesBeforeStart int  `json:"minutes_before_start" bson:"minutes_before_start"`
}

// Reminder — запись напоминания; sent переключает фоновый процесс, не движок.
type Reminder struct {
	MinutesBefore int  `json:"minutes_before" bson:"minutes_before"`
	Sent          bool `json:"sent" bson:"sent"`
}

// MaxReminders — предельное число напоминаний на событие.
const MaxReminders = 5

// Event — событие с ответами, листом ожидания и напоминаниями.
// Область видимости задаётся ровно одним из TeamID/ClubID/OwnerID.
type Event struct {
	ID              string                  `json:"id" bson:"_id"`
	TeamID          *string                 `json:"team_id,omitempty" bson:"team_id,omitempty"`
	ClubID          *string                 `json:"club_id,omitempty" bson:"club_id,omitempty"`
	OwnerID         *string                 `json:"owner_id,omitempty" bson:"owner_id,omitempty"`
	Title           string                  `json:"title" bson:"title"`
	Date            time.Time               `json:"date" bson:"date"`
	StartTime       *time.Time              `json:"start_time,omitempty" bson:"start_time,omitempty"`
	DurationMinutes *int                    `json:"duration_minutes,omitempty" bson:"duration_minutes,omitempty"`
	Capacity        *int                    `json:"capacity,omitempty" bson:"capacity,omitempty"`
	LockPeriod      LockPeriod              `json:"lock_period" bson:"lock_period"`
	RSVPDeadline    *time.Time              `json:"rsvp_deadline,omitempty" bson:"rsvp_deadline,omitempty"`
	Responses       map[string]RSVPResponse `json:"responses" bson:"responses"`
	Waitlist        []string                `json:"waitlist" bson:"waitlist"`
	Reminders       []Reminder              `json:"reminders" bson:"reminders"`
	CreatedBy       string                  `json:"created_by" bson:"created_by"`
	CreatedAt       time.Time               `json:"created_at" bson:"created_at"`
	Version         int64                   `json:"-" bson:"version"`
}

// StartAt — момент начала: явное время старта, иначе дата события.
func (e *Event) StartAt() time.Time {
	if e.StartTime != nil {
		return *e.StartTime
	}
	return e.Date
}

// IsLocked — попадает ли now в период заморозки перед началом.
// Вычисляется на каждом чтении по текущему состоянию события.
func (e *Event) IsLocked(now time.Time) bool {
	if !e.LockPeriod.Enabled {
		return false
	}
	lockStart := e.StartAt().Add(-time.Duration(e.LockPeriod.MinutesBeforeStart) * time.Minute)
	return !now.Before(lockStart)
}

// IsDeadlinePassed — истёк ли дедлайн RSVP, если он задан.
func (e *Event) IsDeadlinePassed(now time.Time) bool {
	if e.RSVPDeadline == nil {
		return false
	}
	return now.After(*e.RSVPDeadline)
}

// ConfirmedCount считается по живой карте ответов.
func (e *Event) ConfirmedCount() int {
	count := 0
	for _, resp := range e.Responses {
		if resp.State == StateConfirmed {
			count++
		}
	}
	return count
}

// IsFull — достигнута ли вместимость. Событие без capacity не бывает заполненным.
func (e *Event) IsFull() bool {
	if e.Capacity == nil {
		return false
	}
	return e.ConfirmedCount() >= *e.Capacity
}

// WaitlistPosition возвращает позицию пользователя в листе ожидания (с единицы)
// или 0, если пользователя там нет.
func (e *Event) WaitlistPosition(userID string) int {
	for i, id := range e.Waitlist {
		if id == userID {
			return i + 1
		}
	}
	return 0
}

func (e *Event) HasResponse(userID string) bool {
	_, ok := e.Responses[userID]
	return ok
}

func (e *Event) IsWaitlisted(userID string) bool {
	return e.WaitlistPosition(userID) > 0
}

// RemoveFromWaitlist удаляет пользователя из листа ожидания, сохраняя порядок остальных.
func (e *Event) RemoveFromWaitlist(userID string) bool {
	for i, id := range e.Waitlist {
		if id == userID {
			e.Waitlist = append(e.Waitlist[:i], e.Waitlist[i+1:]...)
			return true
		}
	}
	return false
}

// ConfirmedUserIDs — список подтвердивших участие, для напоминаний и посещаемости.
func (e *Event) ConfirmedUserIDs() []string {
	ids := make([]string, 0, len(e.Responses))
	for userID, resp := range e.Responses {
		if resp.State == StateConfirmed {
			ids = append(ids, userID)
		}
	}
	return ids
}
