// ABOUTME: SQLite schema for the contact pipeline and task board
// ABOUTME: Tables are created idempotently when a database is opened
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS companies (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	organization_id TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_companies_org ON companies(organization_id);

CREATE TABLE IF NOT EXISTS contacts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	stage TEXT NOT NULL CHECK(stage IN ('FAMILIAR', 'ENCHANTING', 'BEWITCHED', 'VANISHED')),
	notes TEXT NOT NULL DEFAULT '',
	company_id TEXT,
	organization_id TEXT NOT NULL,
	converted_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contacts_org ON contacts(organization_id);
CREATE INDEX IF NOT EXISTS idx_contacts_company_id ON contacts(company_id);

CREATE TABLE IF NOT EXISTS interactions (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL CHECK(type IN ('EMAIL', 'CALL', 'MEETING', 'NOTE')),
	description TEXT NOT NULL,
	contact_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_interactions_contact ON interactions(contact_id, created_at DESC);

CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL CHECK(status IN ('SUMMONED', 'IN_RITUAL', 'BANISHED')),
	priority TEXT NOT NULL CHECK(priority IN ('LOW', 'MEDIUM', 'HIGH', 'CRITICAL')),
	assignee_id TEXT,
	organization_id TEXT NOT NULL,
	completed_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_org ON tasks(organization_id);

CREATE TABLE IF NOT EXISTS tags (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	color TEXT NOT NULL,
	organization_id TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tags_org ON tags(organization_id);

CREATE TABLE IF NOT EXISTS task_tags (
	task_id TEXT NOT NULL,
	tag_id TEXT NOT NULL,
	PRIMARY KEY (task_id, tag_id)
);

CREATE INDEX IF NOT EXISTS idx_task_tags_tag ON task_tags(tag_id);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
