package apikey

import "errors"

var (
	ErrKeyNotFound = errors.New("api key not found")
	ErrKeyRevoked  = errors.New("api key revoked")
	ErrKeyInvalid  = errors.New("api key invalid")
	ErrScopeDenied = errors.New("endpoint not allowed for this key")
	ErrRateLimited = errors.New("rate limit exceeded")
)
