package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Roles known to the identity directory.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is a directory record. Username doubles as the identity id used
// for enrollment sample storage and label mapping.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the user may reach admin-only routes.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidEmail applies the directory's address rule. The address must have
// a local part and a domain with at least one dot.
func ValidEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	dom := email[at+1:]
	return strings.Contains(dom, ".") && !strings.HasPrefix(dom, ".") && !strings.HasSuffix(dom, ".")
}
