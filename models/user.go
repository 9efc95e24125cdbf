package models

// RoleUser is granted to every account.
const RoleUser = "ROLE_USER"

type User struct {
	Base
	FirstName string   `json:"firstName" gorm:"size:64;not null" validate:"required,max=64"`
	LastName  string   `json:"lastName" gorm:"size:64;not null" validate:"required,max=64"`
	Email     string   `json:"email" gorm:"size:180;uniqueIndex;not null" validate:"required,email,max=180"`
	Password  string   `json:"-" gorm:"not null"`
	APIToken  string   `json:"apiToken" gorm:"size:512;index"`
	Roles     []string `json:"roles" gorm:"type:text;serializer:json"`
}

// Identifier is the value clients log in with.
func (u *User) Identifier() string { return u.Email }

// Normalize guarantees RoleUser is present exactly once.
func (u *User) Normalize() {
	roles := make([]string, 0, len(u.Roles)+1)
	seen := map[string]bool{}
	for _, r := range append(u.Roles, RoleUser) {
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		roles = append(roles, r)
	}
	u.Roles = roles
}

// UserPatch is the self-edit payload. Password is hashed by the caller,
// never applied as is.
type UserPatch struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
}

func (p UserPatch) ApplyTo(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
}
