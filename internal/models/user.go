package models

type User struct {
	ID        int
	Username  string
	FirstName string
	LastName  string
	Email     string
	Password  string // bcrypt hash, never rendered
}

// DisplayName prefers the full name and falls back to the username.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}
