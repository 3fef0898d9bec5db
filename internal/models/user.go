package models

type User struct {
	ID           int64  `db:"id"`
	Email        string `db:"email"`
	Name         string `db:"name"`
	IsSuperuser  bool   `db:"is_superuser"`
	CanConvene   bool   `db:"can_convene"`
	CanSupervise bool   `db:"can_supervise"`
	IsActive     bool   `db:"is_active"`
}
