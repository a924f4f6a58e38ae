package password

import "errors"

var (
	ErrEmptyPassword     = errors.New("password must not be empty")
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrMultilinePassword = errors.New("password must not contain line breaks")
	ErrNotInteractive    = errors.New("no terminal available for the password prompt; set " + EnvPassword)
	errUnexpectedHash    = errors.New("openssl returned an unexpected hash")
)
