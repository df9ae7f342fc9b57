package service

import (
	"fmt"

	"github.com/Freeeeeet/campus_events/internal/directory"
	"github.com/Freeeeeet/campus_events/internal/model"
)

// requireAdmin возвращает пользователя, если он администратор
func requireAdmin(dir *directory.Directory, actorID string) (model.User, error) {
	actor, err := dir.User(actorID)
	if err != nil {
		return model.User{}, err
	}
	if actor.Role != model.RoleAdmin {
		return model.User{}, fmt.Errorf("%w: admin role required", model.ErrNotPermitted)
	}
	return actor, nil
}

// requireManager возвращает пользователя, если он организатор или администратор
func requireManager(dir *directory.Directory, actorID string) (model.User, error) {
	actor, err := dir.User(actorID)
	if err != nil {
		return model.User{}, err
	}
	if !actor.CanManageEvents() {
		return model.User{}, fmt.Errorf("%w: organizer or admin role required", model.ErrNotPermitted)
	}
	return actor, nil
}
