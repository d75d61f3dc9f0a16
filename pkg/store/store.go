// Package store defines the storage interfaces for Tracks entities.
package store

// Store is an interface for managing users, organizations, workspaces,
// projects, tasks, and their satellites.
type Store interface {
	UserStore
	OrgStore
	WorkspaceStore
	ProjectStore
	TaskStore
	CommentStore
	ActivityStore
	NotificationStore
	AccessTokenStore
	WebhookStore
}
