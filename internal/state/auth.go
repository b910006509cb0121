package state

import "github.com/dmorales/huq/internal/models"

// AuthState is the session slice. Token is the opaque bearer token; the
// client never inspects it.
type AuthState struct {
	User          models.User
	Token         string
	Authenticated bool
	Err           string
}

// AuthAction mutates the auth slice.
type AuthAction interface {
	Action
	authAction()
}

type authMarker struct{}

func (authMarker) isAction()   {}
func (authMarker) authAction() {}

// LoginSuccess records a fresh session.
type LoginSuccess struct {
	authMarker
	User  models.User
	Token string
}

// LoginFailure clears any partial session and records the error.
type LoginFailure struct {
	authMarker
	Err string
}

// Logout tears the session down. Dispatched on explicit logout and on any
// 401 from the backend.
type Logout struct {
	authMarker
}

// ClearAuthError drops a stale error message.
type ClearAuthError struct {
	authMarker
}

func reduceAuth(s AuthState, action AuthAction) AuthState {
	switch a := action.(type) {
	case LoginSuccess:
		s.User = a.User
		s.Token = a.Token
		s.Authenticated = true
		s.Err = ""
	case LoginFailure:
		s = AuthState{Err: a.Err}
	case Logout:
		s = AuthState{}
	case ClearAuthError:
		s.Err = ""
	}
	return s
}
