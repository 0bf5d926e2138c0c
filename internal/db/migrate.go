package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is idempotent so the
// full list is replayed on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS teams (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS team_members (
		team_id TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		display_name TEXT NOT NULL DEFAULT '',
		daily_work_hours REAL NOT NULL,
		work_days INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (team_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		short_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		team_id TEXT REFERENCES teams(id) ON DELETE SET NULL,
		start_date TEXT,
		actual_expected_end_date TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sprints (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		position INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'planned' CHECK (status IN ('planned','active','completed')),
		completed_at TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		assignee_id TEXT NOT NULL,
		sprint_id TEXT REFERENCES sprints(id) ON DELETE SET NULL,
		title TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'todo' CHECK (status IN ('todo','in_progress','in_review','completed')),
		estimated_hours REAL NOT NULL DEFAULT 0 CHECK (estimated_hours >= 0),
		actual_hours REAL NOT NULL DEFAULT 0 CHECK (actual_hours >= 0),
		sort_order INTEGER,
		is_backlog INTEGER NOT NULL DEFAULT 0,
		start_date TEXT,
		end_date TEXT,
		expected_start_date TEXT,
		expected_end_date TEXT,
		deleted_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS task_dependencies (
		task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		depends_on_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		type TEXT NOT NULL DEFAULT 'finish_to_start'
			CHECK (type IN ('finish_to_start','start_to_start','finish_to_finish','start_to_finish')),
		lag_days INTEGER NOT NULL DEFAULT 0 CHECK (lag_days >= 0),
		PRIMARY KEY (task_id, depends_on_id),
		CHECK (task_id <> depends_on_id)
	)`,
	`CREATE TABLE IF NOT EXISTS work_logs (
		id TEXT PRIMARY KEY,
		task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		hours REAL NOT NULL CHECK (hours > 0),
		logged_at TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`ALTER TABLE tasks ADD COLUMN description TEXT NOT NULL DEFAULT ''`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_project_assignee ON tasks(project_id, assignee_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_sprint ON tasks(sprint_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sprints_project ON sprints(project_id, position)`,
	`CREATE INDEX IF NOT EXISTS idx_task_dependencies_depends_on ON task_dependencies(depends_on_id)`,
	`CREATE INDEX IF NOT EXISTS idx_work_logs_task ON work_logs(task_id)`,
}
