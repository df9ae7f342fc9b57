package calendar

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return base.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func TestCalendar_IsAvailable(t *testing.T) {
	cal := New()
	require.True(t, cal.Book("a", at(10, 0), at(11, 0)))

	cases := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"same interval", at(10, 0), at(11, 0), false},
		{"inside", at(10, 15), at(10, 45), false},
		{"covers", at(9, 0), at(12, 0), false},
		{"overlaps start", at(9, 30), at(10, 30), false},
		{"overlaps end", at(10, 30), at(11, 30), false},
		{"touches before", at(9, 0), at(10, 0), true},
		{"touches after", at(11, 0), at(12, 0), true},
		{"far away", at(14, 0), at(15, 0), true},
		{"empty interval", at(12, 0), at(12, 0), false},
		{"inverted interval", at(13, 0), at(12, 0), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, cal.IsAvailable(tc.start, tc.end))
		})
	}
}

func TestCalendar_Book(t *testing.T) {
	t.Run("should refuse overlapping interval without side effects", func(t *testing.T) {
		req := require.New(t)
		cal := New()

		req.True(cal.Book("a", at(10, 0), at(11, 0)))
		req.False(cal.Book("b", at(10, 30), at(11, 30)))
		req.Equal(1, cal.Len())
		req.False(cal.Has("b"))
	})

	t.Run("should allow back to back bookings", func(t *testing.T) {
		req := require.New(t)
		cal := New()

		req.True(cal.Book("a", at(10, 0), at(11, 0)))
		req.True(cal.Book("b", at(11, 0), at(12, 0)))
		req.True(cal.Book("c", at(9, 0), at(10, 0)))

		bookings := cal.Bookings()
		req.Len(bookings, 3)
		req.Equal("c", bookings[0].EventID)
		req.Equal("a", bookings[1].EventID)
		req.Equal("b", bookings[2].EventID)
	})

	t.Run("should refuse a second booking for the same event", func(t *testing.T) {
		req := require.New(t)
		cal := New()

		req.True(cal.Book("a", at(10, 0), at(11, 0)))
		req.False(cal.Book("a", at(14, 0), at(15, 0)))
		req.Equal(1, cal.Len())
	})

	t.Run("should refuse invalid interval", func(t *testing.T) {
		cal := New()
		require.False(t, cal.Book("a", at(11, 0), at(10, 0)))
		require.Zero(t, cal.Len())
	})
}

func TestCalendar_Release_RoundTrip(t *testing.T) {
	req := require.New(t)
	cal := New()

	req.True(cal.Book("a", at(10, 0), at(11, 0)))
	req.False(cal.IsAvailable(at(10, 0), at(11, 0)))

	cal.Release("a")
	req.True(cal.IsAvailable(at(10, 0), at(11, 0)))
	req.False(cal.Has("a"))

	// повторное освобождение ничего не ломает
	cal.Release("a")
	cal.Release("unknown")
	req.Zero(cal.Len())

	req.True(cal.Book("b", at(10, 0), at(11, 0)))
}

func TestCalendar_New_RestoresBookings(t *testing.T) {
	req := require.New(t)
	cal := New()
	req.True(cal.Book("a", at(10, 0), at(11, 0)))
	req.True(cal.Book("b", at(12, 0), at(13, 0)))

	restored := New(cal.Bookings()...)
	req.Equal(cal.Bookings(), restored.Bookings())
	req.False(restored.IsAvailable(at(12, 30), at(12, 45)))
}

func TestCalendar_ConcurrentBookingsNeverOverlap(t *testing.T) {
	req := require.New(t)
	cal := New()

	var wg sync.WaitGroup
	for i := range 200 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := at(8, (i%40)*15)
			cal.Book(fmt.Sprintf("e%d", i), start, start.Add(45*time.Minute))
		}(i)
	}
	wg.Wait()

	bookings := cal.Bookings()
	req.NotEmpty(bookings)
	for i := range bookings {
		req.True(bookings[i].StartTime.Before(bookings[i].EndTime))
		for j := i + 1; j < len(bookings); j++ {
			req.False(bookings[i].Overlaps(bookings[j].StartTime, bookings[j].EndTime),
				"%s overlaps %s", bookings[i].EventID, bookings[j].EventID)
		}
	}
}
