package session

// AuthState is the process-wide answer to "may this client call the API".
type AuthState struct {
	// Resolved is false until the resolver has run.
	Resolved bool
	// Authenticated may be true with a nil Identity when machine
	// credentials are configured.
	Authenticated bool
	Identity      *Identity
}

// Source names where the state came from, for status output.
func (s AuthState) Source() string {
	switch {
	case !s.Resolved:
		return "unresolved"
	case !s.Authenticated:
		return "none"
	case s.Identity != nil:
		return "session"
	default:
		return "machine credentials"
	}
}

func (s AuthState) clone() AuthState {
	if s.Identity != nil {
		id := *s.Identity
		s.Identity = &id
	}
	return s
}
