package service

import "errors"

var (
	// ErrInvalidURL is returned when the destination is not a valid
	// http or https URL.
	ErrInvalidURL = errors.New("invalid destination url")
	// ErrInvalidAlias is returned when a custom alias violates the
	// short-code format (3-20 chars, [A-Za-z0-9_-]).
	ErrInvalidAlias = errors.New("invalid custom alias")
	// ErrAliasTaken is returned when a caller-supplied custom alias is
	// already in use. Caller intent is explicit, so there is no retry.
	ErrAliasTaken = errors.New("custom alias taken")
	// ErrGenerationExhausted is returned when the bounded retry loop
	// cannot find a free generated code.
	ErrGenerationExhausted = errors.New("short code generation exhausted")
	// ErrLinkInactive is returned when resolving a deactivated link.
	// Distinguished from not-found so the boundary can answer 410.
	ErrLinkInactive = errors.New("link inactive")
	// ErrLinkExpired is returned when resolving a link past its expiry.
	ErrLinkExpired = errors.New("link expired")
	// ErrPasswordRequired is returned when a protected link is resolved
	// without a password.
	ErrPasswordRequired = errors.New("link password required")
	// ErrPasswordInvalid is returned when the supplied link password
	// does not match.
	ErrPasswordInvalid = errors.New("link password invalid")
	// ErrNotOwner is returned when a caller tries to read analytics for
	// or mutate a link they don't own. Anonymous links have no owner and
	// always fail this check.
	ErrNotOwner = errors.New("caller does not own link")
	// ErrInvalidCredentials is returned on login with an unknown
	// username or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
