package domain

import "time"

// User is a registered owner of tasks.
type User struct {
	ID               int64
	FullName         string
	Email            string
	RegistrationDate time.Time
	UpdatedAt        *time.Time
	Tasks            TaskStats
}

// TaskStats is the per-user task aggregate computed by the store.
type TaskStats struct {
	Total     int
	Completed int
}

// ApplyTimestamps stamps the user before it is written. New users get a
// registration date; existing ones get a fresh UpdatedAt.
func (u *User) ApplyTimestamps(now time.Time, isNew bool) {
	now = now.UTC()
	if isNew {
		u.RegistrationDate = now
		u.UpdatedAt = nil
		return
	}
	u.UpdatedAt = &now
}
