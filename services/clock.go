package services

import "time"

// Clock внедряется в сервисы, зависящие от времени (период заморозки, дедлайны,
// напоминания), чтобы их можно было тестировать без реального времени.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// NewRealClock возвращает часы на системном времени (UTC).
func NewRealClock() Clock { return realClock{} }
