package proto

import (
	"errors"
)

var (
	// ErrUnauthorized is returned when the user is not authorized to perform action.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrOrgNotFound is returned when an organization is not found.
	ErrOrgNotFound = errors.New("organization not found")
	// ErrWorkspaceNotFound is returned when a workspace is not found.
	ErrWorkspaceNotFound = errors.New("workspace not found")
	// ErrProjectNotFound is returned when a project is not found.
	ErrProjectNotFound = errors.New("project not found")
	// ErrTaskNotFound is returned when a task is not found.
	ErrTaskNotFound = errors.New("task not found")
	// ErrCommentNotFound is returned when a comment is not found.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrNotificationNotFound is returned when a notification is not found.
	ErrNotificationNotFound = errors.New("notification not found")
	// ErrWebhookNotFound is returned when a webhook is not found.
	ErrWebhookNotFound = errors.New("webhook not found")
	// ErrTokenNotFound is returned when a token is not found.
	ErrTokenNotFound = errors.New("token not found")
	// ErrTokenExpired is returned when a token is expired.
	ErrTokenExpired = errors.New("token expired")
	// ErrMemberExists is returned when a user is already a member.
	ErrMemberExists = errors.New("user is already a member")
	// ErrNotMember is returned when a user is not a member.
	ErrNotMember = errors.New("user is not a member")
	// ErrOwnedOrgs is returned when account deletion is blocked by
	// organizations the user still owns.
	ErrOwnedOrgs = errors.New("user still owns organizations, transfer ownership first")
	// ErrInvalidInput is returned when a request carries malformed or
	// missing required fields. Wrap it with details.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidPassword is returned when credentials don't verify.
	ErrInvalidPassword = errors.New("invalid credentials")
)
