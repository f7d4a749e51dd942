package entity

// Role decides the prefix of a user's public id.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Prefix() string {
	if r == RoleAdmin {
		return "ADM"
	}
	return "USR"
}
