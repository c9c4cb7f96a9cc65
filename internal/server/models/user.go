// Package models defines the records persisted by the credential store and
// embedded in identity tokens.
package models

// UserCredentials identifies a user. UID "0" is reserved for the super user
// created by the install flow.
type UserCredentials struct {
	UID       string `json:"uid"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Firstname string `json:"firstname,omitempty"`
	Lastname  string `json:"lastname,omitempty"`
}

// UserRecord is a persisted user profile. Roles[0] is the role the user was
// created with.
type UserRecord struct {
	Credentials UserCredentials `json:"credentials"`
	Roles       []string        `json:"roles"`
	Groups      []string        `json:"groups"`
	Preferences map[string]any  `json:"preferences"`
	Meta        map[string]any  `json:"meta"`
}

// NewUserRecord builds the record for a freshly created user.
func NewUserRecord(uid string, details NewUser, role string) *UserRecord {
	return &UserRecord{
		Credentials: UserCredentials{
			UID:       uid,
			Username:  details.Username,
			Email:     details.Email,
			Firstname: details.Firstname,
			Lastname:  details.Lastname,
		},
		Roles:       []string{role},
		Groups:      []string{},
		Preferences: map[string]any{},
		Meta:        map[string]any{},
	}
}

// HasAnyRole reports whether the user holds at least one of roles.
func (u *UserRecord) HasAnyRole(roles []string) bool {
	for _, want := range roles {
		for _, have := range u.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// NewUser is the profile collected when a user is created. Password is only
// held long enough to be checked and hashed; it is never persisted.
type NewUser struct {
	Username  string
	Email     string
	Firstname string
	Lastname  string
	Password  string
}
