package models

import "time"

// AttendanceStatus — закрытое перечисление статусов посещаемости.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

func (s AttendanceStatus) IsValid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

// AttendanceRecord — отметка одного участника в рамках сессии.
type AttendanceRecord struct {
	Status AttendanceStatus `json:"status" bson:"status"`
	Notes  *string          `json:"notes,omitempty" bson:"notes,omitempty"`
}

// AttendanceSummary — денормализованные счётчики сессии.
// Всегда чистая функция от records (SummarizeAttendance), руками не правится.
type AttendanceSummary struct {
	TotalMembers   int     `json:"total_members" bson:"total_members"`
	PresentCount   int     `json:"present_count" bson:"present_count"`
	AbsentCount    int     `json:"absent_count" bson:"absent_count"`
	LateCount      int     `json:"late_count" bson:"late_count"`
	ExcusedCount   int     `json:"excused_count" bson:"excused_count"`
	AttendanceRate float64 `json:"attendance_rate" bson:"attendance_rate"`
}

// AttendanceSession — одна снятая посещаемость командной активности.
type AttendanceSession struct {
	ID          string                      `json:"id" bson:"_id"`
	TeamID      string                      `json:"team_id" bson:"team_id"`
	EventID     *string                     `json:"event_id,omitempty" bson:"event_id,omitempty"`
	SessionDate time.Time                   `json:"session_date" bson:"session_date"`
	SessionType string                      `json:"session_type" bson:"session_type"`
	Records     map[string]AttendanceRecord `json:"records" bson:"records"`
	Summary     AttendanceSummary           `json:"summary" bson:"summary"`
	CreatedBy   string                      `json:"created_by" bson:"created_by"`
	CreatedAt   time.Time                   `json:"created_at" bson:"created_at"`
	Version     int64                       `json:"-" bson:"version"`
}

// SummarizeAttendance пересчитывает счётчики из карты записей.
// Единственный легальный способ получить AttendanceSummary: вызывается на каждом
// пути записи, внешние счётчики никогда не принимаются.
func SummarizeAttendance(records map[string]AttendanceRecord) AttendanceSummary {
	summary := AttendanceSummary{TotalMembers: len(records)}
	for _, record := range records {
		switch record.Status {
		case AttendancePresent:
			summary.PresentCount++
		case AttendanceAbsent:
			summary.AbsentCount++
		case AttendanceLate:
			summary.LateCount++
		case AttendanceExcused:
			summary.ExcusedCount++
		}
	}
	if summary.TotalMembers > 0 {
		summary.AttendanceRate = float64(summary.PresentCount) / float64(summary.TotalMembers) * 100
	}
	return summary
}

// TypeBreakdown — агрегат посещаемости в разрезе одного типа сессии.
type TypeBreakdown struct {
	Sessions       int     `json:"sessions"`
	Present        int     `json:"present"`
	Absent         int     `json:"absent"`
	Late           int     `json:"late"`
	Excused        int     `json:"excused"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// AttendanceStats — сводная статистика по множеству сессий.
// Поля серий заполняются только для статистики конкретного участника.
type AttendanceStats struct {
	TotalSessions  int                      `json:"total_sessions"`
	Present        int                      `json:"present"`
	Absent         int                      `json:"absent"`
	Late           int                      `json:"late"`
	Excused        int                      `json:"excused"`
	AttendanceRate float64                  `json:"attendance_rate"`
	ByType         map[string]TypeBreakdown `json:"by_type,omitempty"`
	CurrentStreak  int                      `json:"current_streak,omitempty"`
	LongestStreak  int                      `json:"longest_streak,omitempty"`
	RecentTrend    []AttendanceStatus       `json:"recent_trend,omitempty"`
}
