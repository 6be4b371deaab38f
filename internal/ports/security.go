package ports

// TokenVerifier validates a bearer token and returns the subject and role
// claims. The HTTP middleware is the only caller.
type TokenVerifier interface {
	Verify(token string) (subject string, role string, err error)
}
