package migrate

import (
	"context"
	"strings"

	"github.com/tracksdev/tracks/pkg/db"
)

const (
	createTablesName    = "create tables"
	createTablesVersion = 1
)

var createTables = Migration{
	Version: createTablesVersion,
	Name:    createTablesName,
	Migrate: func(ctx context.Context, tx *db.Tx) error {
		schema := createTablesSqlite
		if tx.DriverName() == driverPostgres {
			schema = createTablesPostgres
		}

		for _, stmt := range strings.Split(schema, ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}

		return nil
	},
	Rollback: func(ctx context.Context, tx *db.Tx) error {
		for _, table := range []string{
			"webhook_events",
			"webhooks",
			"access_tokens",
			"notifications",
			"activities",
			"reactions",
			"comments",
			"task_watchers",
			"task_assignees",
			"tasks",
			"project_members",
			"projects",
			"workspace_members",
			"workspaces",
			"organization_members",
			"organizations",
			"users",
		} {
			if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
				return err
			}
		}
		return nil
	},
}

const createTablesSqlite = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	admin BOOLEAN NOT NULL DEFAULT false,
	password TEXT,
	last_context_type TEXT,
	last_context_id INTEGER,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS organizations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS organization_members (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	organization_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	role INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (organization_id, user_id),
	CONSTRAINT org_members_org_fk
		FOREIGN KEY (organization_id) REFERENCES organizations (id)
		ON DELETE CASCADE,
	CONSTRAINT org_members_user_fk
		FOREIGN KEY (user_id) REFERENCES users (id)
		ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS workspaces (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT,
	color TEXT,
	context_type TEXT NOT NULL,
	context_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_workspaces_context ON workspaces (context_type, context_id);

CREATE TABLE IF NOT EXISTS workspace_members (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	workspace_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	role INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (workspace_id, user_id),
	CONSTRAINT workspace_members_workspace_fk
		FOREIGN KEY (workspace_id) REFERENCES workspaces (id)
		ON DELETE CASCADE,
	CONSTRAINT workspace_members_user_fk
		FOREIGN KEY (user_id) REFERENCES users (id)
		ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS projects (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	workspace_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	description TEXT,
	status TEXT NOT NULL DEFAULT 'planning',
	start_date DATETIME,
	due_date DATETIME,
	tags TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	CONSTRAINT projects_workspace_fk
		FOREIGN KEY (workspace_id) REFERENCES workspaces (id)
		ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS project_members (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	role INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (project_id, user_id),
	CONSTRAINT project_members_project_fk
		FOREIGN KEY (project_id) REFERENCES projects (id)
		ON DELETE CASCADE,
	CONSTRAINT project_members_user_fk
		FOREIGN KEY (user_id) REFERENCES users (id)
		ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	description TEXT,
	status TEXT NOT NULL DEFAULT 'todo',
	priority TEXT NOT NULL DEFAULT 'medium',
	due_date DATETIME,
	created_by INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	CONSTRAINT tasks_project_fk
		FOREIGN KEY (project_id) REFERENCES projects (id)
		ON DELETE CASCADE,
	CONSTRAINT tasks_created_by_fk
		FOREIGN KEY (created_by) REFERENCES users (id)
		ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks (project_id);

CREATE TABLE IF NOT EXISTS task_assignees (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (task_id, user_id),
	CONSTRAINT task_assignees_task_fk
		FOREIGN KEY (task_id) REFERENCES tasks (id)
		ON DELETE CASCADE,
	CONSTRAINT task_assignees_user_fk
		FOREIGN KEY (user_id) REFERENCES users (id)
		ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS task_watchers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (task_id, user_id),
	CONSTRAINT task_watchers_task_fk
		FOREIGN KEY (task_id) REFERENCES tasks (id)
		ON DELETE CASCADE,
	CONSTRAINT task_watchers_user_fk
		FOREIGN KEY (user_id) REFERENCES users (id)
		ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS comments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id INTEGER NOT NULL,
	author_id INTEGER NOT NULL,
	content TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	CONSTRAINT comments_task_fk
		FOREIGN KEY (task_id) REFERENCES tasks (id)
		ON DELETE CASCADE,
	CONSTRAINT comments_author_fk
		FOREIGN KEY (author_id) REFERENCES users (id)
		ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS reactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	comment_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	emoji TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (comment_id, user_id, emoji),
	CONSTRAINT reactions_comment_fk
		FOREIGN KEY (comment_id) REFERENCES comments (id)
		ON DELETE CASCADE,
	CONSTRAINT reactions_user_fk
		FOREIGN KEY (user_id) REFERENCES users (id)
		ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS activities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id INTEGER NOT NULL,
	action TEXT NOT NULL,
	field TEXT,
	old_value TEXT,
	new_value TEXT,
	performed_by INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	CONSTRAINT activities_task_fk
		FOREIGN KEY (task_id) REFERENCES tasks (id)
		ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_activities_task ON activities (task_id);

CREATE TABLE IF NOT EXISTS notifications (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	recipient_id INTEGER NOT NULL,
	type TEXT NOT NULL,
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	task_id INTEGER,
	project_id INTEGER,
	organization_id INTEGER,
	read BOOLEAN NOT NULL DEFAULT false,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	CONSTRAINT notifications_recipient_fk
		FOREIGN KEY (recipient_id) REFERENCES users (id)
		ON DELETE CASCADE,
	CONSTRAINT notifications_task_fk
		FOREIGN KEY (task_id) REFERENCES tasks (id)
		ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications (recipient_id, read);

CREATE TABLE IF NOT EXISTS access_tokens (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	user_id INTEGER NOT NULL,
	token TEXT NOT NULL UNIQUE,
	expires_at DATETIME,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	CONSTRAINT access_tokens_user_fk
		FOREIGN KEY (user_id) REFERENCES users (id)
		ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS webhooks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id INTEGER NOT NULL,
	url TEXT NOT NULL,
	secret TEXT NOT NULL,
	content_type INTEGER NOT NULL,
	active BOOLEAN NOT NULL DEFAULT true,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	CONSTRAINT webhooks_project_fk
		FOREIGN KEY (project_id) REFERENCES projects (id)
		ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS webhook_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	webhook_id INTEGER NOT NULL,
	event INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (webhook_id, event),
	CONSTRAINT webhook_events_webhook_fk
		FOREIGN KEY (webhook_id) REFERENCES webhooks (id)
		ON DELETE CASCADE
);
`

const createTablesPostgres = `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	admin BOOLEAN NOT NULL DEFAULT false,
	password TEXT,
	last_context_type TEXT,
	last_context_id BIGINT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS organizations (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS organization_members (
	id SERIAL PRIMARY KEY,
	organization_id BIGINT NOT NULL REFERENCES organizations (id) ON DELETE CASCADE,
	user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	role INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (organization_id, user_id)
);

CREATE TABLE IF NOT EXISTS workspaces (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	color TEXT,
	context_type TEXT NOT NULL,
	context_id BIGINT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_workspaces_context ON workspaces (context_type, context_id);

CREATE TABLE IF NOT EXISTS workspace_members (
	id SERIAL PRIMARY KEY,
	workspace_id BIGINT NOT NULL REFERENCES workspaces (id) ON DELETE CASCADE,
	user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	role INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (workspace_id, user_id)
);

CREATE TABLE IF NOT EXISTS projects (
	id SERIAL PRIMARY KEY,
	workspace_id BIGINT NOT NULL REFERENCES workspaces (id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	description TEXT,
	status TEXT NOT NULL DEFAULT 'planning',
	start_date TIMESTAMP,
	due_date TIMESTAMP,
	tags TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS project_members (
	id SERIAL PRIMARY KEY,
	project_id BIGINT NOT NULL REFERENCES projects (id) ON DELETE CASCADE,
	user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	role INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (project_id, user_id)
);

CREATE TABLE IF NOT EXISTS tasks (
	id SERIAL PRIMARY KEY,
	project_id BIGINT NOT NULL REFERENCES projects (id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	description TEXT,
	status TEXT NOT NULL DEFAULT 'todo',
	priority TEXT NOT NULL DEFAULT 'medium',
	due_date TIMESTAMP,
	created_by BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks (project_id);

CREATE TABLE IF NOT EXISTS task_assignees (
	id SERIAL PRIMARY KEY,
	task_id BIGINT NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
	user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (task_id, user_id)
);

CREATE TABLE IF NOT EXISTS task_watchers (
	id SERIAL PRIMARY KEY,
	task_id BIGINT NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
	user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (task_id, user_id)
);

CREATE TABLE IF NOT EXISTS comments (
	id SERIAL PRIMARY KEY,
	task_id BIGINT NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
	author_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	content TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS reactions (
	id SERIAL PRIMARY KEY,
	comment_id BIGINT NOT NULL REFERENCES comments (id) ON DELETE CASCADE,
	user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	emoji TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (comment_id, user_id, emoji)
);

CREATE TABLE IF NOT EXISTS activities (
	id SERIAL PRIMARY KEY,
	task_id BIGINT NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
	action TEXT NOT NULL,
	field TEXT,
	old_value TEXT,
	new_value TEXT,
	performed_by BIGINT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_activities_task ON activities (task_id);

CREATE TABLE IF NOT EXISTS notifications (
	id SERIAL PRIMARY KEY,
	recipient_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	type TEXT NOT NULL,
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	task_id BIGINT REFERENCES tasks (id) ON DELETE CASCADE,
	project_id BIGINT,
	organization_id BIGINT,
	read BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications (recipient_id, read);

CREATE TABLE IF NOT EXISTS access_tokens (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	token TEXT NOT NULL UNIQUE,
	expires_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS webhooks (
	id SERIAL PRIMARY KEY,
	project_id BIGINT NOT NULL REFERENCES projects (id) ON DELETE CASCADE,
	url TEXT NOT NULL,
	secret TEXT NOT NULL,
	content_type INTEGER NOT NULL,
	active BOOLEAN NOT NULL DEFAULT true,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS webhook_events (
	id SERIAL PRIMARY KEY,
	webhook_id BIGINT NOT NULL REFERENCES webhooks (id) ON DELETE CASCADE,
	event INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (webhook_id, event)
);
`
