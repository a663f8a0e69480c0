package interfaces

import "github.com/m-mizutani/goerr/v2"

// Repository errors shared by every backend
var (
	ErrNotFound      = goerr.New("not found")
	ErrAlreadyExists = goerr.New("already exists")
)
