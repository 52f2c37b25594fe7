// Package apperr defines the sentinel errors shared across the service layers.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// ErrChallengeExpired covers both an unknown and an expired captcha id;
	// the two cases are indistinguishable to the client.
	ErrChallengeExpired = errors.New("challenge expired")

	ErrMalformedBody = errors.New("malformed multipart body")
	ErrNoFileFound   = errors.New("no file in multipart body")
	ErrEmptyContent  = errors.New("empty file content")

	ErrBadCredentials    = errors.New("bad credentials")
	ErrBadCredentialFile = errors.New("credential file missing or malformed")
)
