package model

import "time"

// Booking занимает комнату мероприятием на полуинтервал [StartTime, EndTime)
type Booking struct {
	EventID   string    `json:"event_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Overlaps пересекается ли бронь с [start, end).
// Соприкасающиеся интервалы не пересекаются.
func (b Booking) Overlaps(start, end time.Time) bool {
	return start.Before(b.EndTime) && end.After(b.StartTime)
}
