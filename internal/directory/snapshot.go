package directory

import "github.com/Freeeeeet/campus_events/internal/model"

// Snapshot полное сохраняемое состояние: комнаты с бронями, мероприятия
// с упорядоченными регистрациями, студенты с ID своих регистраций.
type Snapshot struct {
	Users  []model.User  `json:"users"`
	Rooms  []model.Room  `json:"rooms"`
	Events []model.Event `json:"events"`
}

// Snapshot копирует текущее состояние. Каждая сущность копируется под своей
// блокировкой, согласованность только в пределах сущности.
func (d *Directory) Snapshot() Snapshot {
	return Snapshot{
		Users:  d.Users(),
		Rooms:  d.Rooms(),
		Events: d.Events(),
	}
}

// Restore собирает каталог из снимка
func Restore(s Snapshot) (*Directory, error) {
	d := New()
	for _, u := range s.Users {
		if err := d.AddUser(u); err != nil {
			return nil, err
		}
	}
	for _, r := range s.Rooms {
		if err := d.AddRoom(r); err != nil {
			return nil, err
		}
	}
	for _, e := range s.Events {
		if err := d.AddEvent(e); err != nil {
			return nil, err
		}
	}
	return d, nil
}
