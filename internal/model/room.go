package model

import (
	"slices"
	"time"
)

type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Capacity  int       `json:"capacity"`
	Bookings  []Booking `json:"bookings"`
	CreatedAt time.Time `json:"created_at"`
}

func (r Room) Clone() Room {
	r.Bookings = slices.Clone(r.Bookings)
	return r
}
