package repository

import "errors"

var (
	ErrVisionTimeout           = errors.New("vision service timed out")
	ErrVisionUnauthorized      = errors.New("vision service rejected the credentials")
	ErrVisionInvalidImage      = errors.New("vision service rejected the image")
	ErrVisionThrottled         = errors.New("vision service rate limit exceeded")
	ErrVisionUnavailable       = errors.New("vision service unavailable")
	ErrVisionMalformedResponse = errors.New("vision service returned a malformed response")
)
