package formatting

import (
	"testing"
	"time"

	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/stretchr/testify/require"
)

func TestPluralize(t *testing.T) {
	cases := map[int]string{
		0:   "мест",
		1:   "место",
		2:   "места",
		4:   "места",
		5:   "мест",
		11:  "мест",
		12:  "мест",
		21:  "место",
		22:  "места",
		111: "мест",
	}
	for n, want := range cases {
		require.Equal(t, want, PluralizeSeats(n), "n=%d", n)
	}
	require.Equal(t, "студента", PluralizeStudents(3))
	require.Equal(t, "мероприятий", PluralizeEvents(25))
}

func TestFormatInterval(t *testing.T) {
	start := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

	require.Equal(t, "02.03.2026 (Пн) 18:00-20:00", FormatInterval(start, start.Add(2*time.Hour)))
	require.Equal(t, "02.03.2026 18:00 - 03.03.2026 01:00", FormatInterval(start, start.Add(7*time.Hour)))
}

func TestParseDateTime(t *testing.T) {
	start, err := ParseDateTime("02.03.2026 18:00", time.UTC)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC), start)

	end, err := ParseEndTime("20:30", start)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 3, 2, 20, 30, 0, 0, time.UTC), end)

	_, err = ParseDateTime("2026-03-02 18:00", time.UTC)
	require.Error(t, err)
	_, err = ParseEndTime("25:00", start)
	require.Error(t, err)
}

func TestFormatEventCard(t *testing.T) {
	start := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	event := model.Event{
		Title:         "Robotics night",
		StartTime:     start,
		EndTime:       start.Add(2 * time.Hour),
		Capacity:      3,
		Status:        model.EventStatusActive,
		Registrations: []model.Registration{{ID: "r1", StudentID: "s1"}},
	}

	card := FormatEventCard(event, "Lab", "Olga Petrova")
	require.Contains(t, card, "✅ Robotics night")
	require.Contains(t, card, "📍 Lab")
	require.Contains(t, card, "👤 Olga Petrova")
	require.Contains(t, card, "Записано 1 из 3, свободно 2 места")

	require.Equal(t, StatusDisplay{"❓", "Неизвестно"}, GetEventStatusDisplay("Archived"))
}
