package accounts

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// invalidCredentials is returned for every login failure that is the caller's fault,
// so responses do not reveal which accounts exist.
func invalidCredentials() *Error {
	return &Error{
		Status:  400,
		Code:    "INVALID_CREDENTIALS",
		Message: "Invalid email or password",
	}
}
