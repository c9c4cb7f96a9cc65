package models

// Identity is the issuer embedded in a token: exactly one of User or
// Service is set.
type Identity struct {
	User    *UserRecord    `json:"user,omitempty"`
	Service *ServiceRecord `json:"service,omitempty"`
}

// UID returns the uid of whichever record is set.
func (i Identity) UID() string {
	switch {
	case i.User != nil:
		return i.User.Credentials.UID
	case i.Service != nil:
		return i.Service.Credentials.UID
	}
	return ""
}

// Username is empty for service identities.
func (i Identity) Username() string {
	if i.User == nil {
		return ""
	}
	return i.User.Credentials.Username
}
