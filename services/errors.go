package services

import "errors"

// Общие ошибки бизнес-правил, используемые в разных сервисах и маппинге HTTP.
// Все они — ожидаемые локальные исходы и возвращаются вызывающей стороне как есть,
// не маскируясь под общие сбои.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки состава команды
	ErrAlreadyMember = errors.New("user is already a member of this team")
	ErrNotAMember    = errors.New("user is not a member of this team")
	// ErrLastTrainer всегда исправима вызывающим: сначала назначьте тренером
	// другого участника. Подсказка должна дойти до конечного пользователя.
	ErrLastTrainer         = errors.New("team must keep at least one trainer: promote another member first")
	ErrTrainerActionOnly   = errors.New("only a team trainer can perform this action")
	ErrTeamDeleteForbidden = errors.New("team deletion is not permitted for this user")
	ErrTeamNameRequired    = errors.New("team name is required")
	ErrInvalidRole         = errors.New("invalid member role")

	// Ошибки участия в событиях
	ErrEventLocked       = errors.New("event is locked for changes before start")
	ErrDeadlinePassed    = errors.New("rsvp deadline has passed")
	ErrEventFull         = errors.New("event is at capacity")
	ErrEventNotFull      = errors.New("event is not at capacity")
	ErrAlreadyResponded  = errors.New("user has already responded to this event")
	ErrAlreadyWaitlisted = errors.New("user is already on the waitlist")
	ErrNotWaitlisted     = errors.New("user is not on the waitlist")
	ErrNoResponse        = errors.New("user has no response to cancel")
	ErrInvalidState      = errors.New("invalid rsvp state")

	// Ошибки создания событий
	ErrEventScopeInvalid    = errors.New("event must have exactly one of team, club or owner scope")
	ErrEventTitleRequired   = errors.New("event title is required")
	ErrEventDateRequired    = errors.New("event date is required")
	ErrInvalidCapacity      = errors.New("event capacity must be positive")
	ErrInvalidLockPeriod    = errors.New("lock period minutes must not be negative")
	ErrTooManyReminders     = errors.New("too many reminders for one event")
	ErrInvalidReminder      = errors.New("reminder minutes must not be negative")
	ErrEventActionForbidden = errors.New("operation not allowed for the current user")

	// Ошибки посещаемости
	ErrInvalidAttendanceStatus = errors.New("invalid attendance status")
	ErrSessionTypeRequired     = errors.New("session type is required")

	// Проигранная гонка оптимистичной блокировки после исчерпания повторов.
	// Вызывающая сторона повторяет запрос со свежим состоянием.
	ErrConflict = errors.New("concurrent modification conflict, retry with fresh state")

	// Ошибки аутентификации
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrEmailTaken         = errors.New("email address is already in use")
)

// maxWriteAttempts — предел повторов read-check-write при конфликте версий.
const maxWriteAttempts = 3
