package formatting

import (
	"fmt"
	"time"
)

// Форматы ввода и вывода времени в диалогах
const (
	DateTimeLayout = "02.01.2006 15:04"
	TimeLayout     = "15:04"
)

// FormatDateTime форматирует дату и время
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// FormatTime форматирует только время
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// FormatInterval форматирует интервал мероприятия.
// Если интервал укладывается в один день, дата не повторяется.
func FormatInterval(start, end time.Time) string {
	if start.Year() == end.Year() && start.YearDay() == end.YearDay() {
		return fmt.Sprintf("%s (%s) %s-%s",
			start.Format("02.01.2006"),
			GetWeekdayShortName(int(start.Weekday())),
			FormatTime(start),
			FormatTime(end),
		)
	}
	return fmt.Sprintf("%s - %s", FormatDateTime(start), FormatDateTime(end))
}

// FormatDuration форматирует длительность
func FormatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%d мин", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%d ч", hours)
	}
	return fmt.Sprintf("%d ч %d мин", hours, mins)
}

// ParseDateTime разбирает "ДД.ММ.ГГГГ ЧЧ:ММ" в заданной зоне
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateTimeLayout, s, loc)
}

// ParseEndTime разбирает время окончания "ЧЧ:ММ" в тот же день, что и start
func ParseEndTime(s string, start time.Time) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(start.Year(), start.Month(), start.Day(), t.Hour(), t.Minute(), 0, 0, start.Location()), nil
}

// GetWeekdayShortName возвращает краткое название дня недели на русском
func GetWeekdayShortName(weekday int) string {
	names := []string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}
	if weekday >= 0 && weekday < len(names) {
		return names[weekday]
	}
	return "?"
}
