package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS components (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	category      TEXT NOT NULL,
	tracking_mode TEXT NOT NULL DEFAULT 'calendar'
		CHECK(tracking_mode IN ('calendar', 'usage', 'hybrid')),
	usage_count   INTEGER NOT NULL DEFAULT 0 CHECK(usage_count >= 0),
	active        INTEGER NOT NULL DEFAULT 1 CHECK(active IN (0, 1)),
	notes         TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS actions (
	id                TEXT PRIMARY KEY,
	component_id      TEXT NOT NULL REFERENCES components(id) ON DELETE CASCADE,
	action_type       TEXT NOT NULL,
	description       TEXT NOT NULL DEFAULT '',
	frequency         INTEGER NOT NULL CHECK(frequency >= 1),
	unit              TEXT NOT NULL CHECK(unit IN ('days', 'uses')),
	notification_time TEXT,
	reminder_strategy TEXT NOT NULL DEFAULT 'standard'
		CHECK(reminder_strategy IN ('gentle', 'standard', 'urgent')),
	last_completed    DATETIME,
	next_due          DATETIME,
	instructions      TEXT NOT NULL DEFAULT '',
	created_at        DATETIME NOT NULL,
	updated_at        DATETIME NOT NULL
);

-- Logs carry no foreign keys: history must survive component and action
-- deletion unless the cascade explicitly removes it.
CREATE TABLE IF NOT EXISTS maintenance_logs (
	id           TEXT PRIMARY KEY,
	component_id TEXT NOT NULL,
	action_id    TEXT NOT NULL,
	completed_at DATETIME NOT NULL,
	was_overdue  INTEGER NOT NULL DEFAULT 0 CHECK(was_overdue IN (0, 1)),
	notes        TEXT NOT NULL DEFAULT '',
	source       TEXT NOT NULL DEFAULT 'user' CHECK(source IN ('user', 'system'))
);

CREATE TABLE IF NOT EXISTS notification_configs (
	id                   TEXT PRIMARY KEY,
	action_id            TEXT NOT NULL UNIQUE REFERENCES actions(id) ON DELETE CASCADE,
	enabled              INTEGER NOT NULL DEFAULT 1 CHECK(enabled IN (0, 1)),
	time_of_day          TEXT,
	escalation_strategy  TEXT NOT NULL
		CHECK(escalation_strategy IN ('single-daily', 'multiple-daily', 'increasing-urgency')),
	escalation_intervals TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_actions_component_id ON actions(component_id);
CREATE INDEX IF NOT EXISTS idx_actions_next_due ON actions(next_due);
CREATE INDEX IF NOT EXISTS idx_logs_action_id ON maintenance_logs(action_id);
CREATE INDEX IF NOT EXISTS idx_logs_component_id ON maintenance_logs(component_id);
CREATE INDEX IF NOT EXISTS idx_logs_completed_at ON maintenance_logs(completed_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
ALTER TABLE actions ADD COLUMN anchor_due DATETIME;

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
