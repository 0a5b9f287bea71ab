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

CREATE TABLE IF NOT EXISTS conversations (
	id                   TEXT PRIMARY KEY,
	kind                 TEXT NOT NULL CHECK(kind IN ('direct', 'team')),
	title                TEXT NOT NULL DEFAULT '',
	job_id               TEXT NOT NULL DEFAULT '',
	last_message_body    TEXT NOT NULL DEFAULT '',
	last_message_at      DATETIME,
	created_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS conversation_participants (
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	viewer_id       TEXT NOT NULL,
	unread_count    INTEGER NOT NULL DEFAULT 0,
	last_read_at    DATETIME,
	PRIMARY KEY (conversation_id, viewer_id)
);

CREATE TABLE IF NOT EXISTS messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	author_id       TEXT NOT NULL,
	body            TEXT NOT NULL DEFAULT '',
	created_at      DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS announcements (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL DEFAULT '',
	body         TEXT NOT NULL DEFAULT '',
	published    INTEGER NOT NULL DEFAULT 0 CHECK(published IN (0, 1)),
	published_at DATETIME
);

CREATE TABLE IF NOT EXISTS announcement_reads (
	announcement_id TEXT NOT NULL REFERENCES announcements(id) ON DELETE CASCADE,
	viewer_id       TEXT NOT NULL,
	read_at         DATETIME NOT NULL,
	PRIMARY KEY (announcement_id, viewer_id)
);

CREATE TABLE IF NOT EXISTS alerts (
	id          TEXT PRIMARY KEY,
	viewer_id   TEXT NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	body        TEXT NOT NULL DEFAULT '',
	action_type TEXT NOT NULL DEFAULT '',
	action_id   TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL,
	read_at     DATETIME
);

CREATE TABLE IF NOT EXISTS tickets (
	id           TEXT PRIMARY KEY,
	subject      TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'open',
	submitter_id TEXT NOT NULL,
	assignee_id  TEXT NOT NULL DEFAULT '',
	updated_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS ticket_watchers (
	ticket_id TEXT NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
	viewer_id TEXT NOT NULL,
	PRIMARY KEY (ticket_id, viewer_id)
);

CREATE TABLE IF NOT EXISTS ticket_comments (
	id         TEXT PRIMARY KEY,
	ticket_id  TEXT NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
	author_id  TEXT NOT NULL,
	body       TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS dismissals (
	viewer_id    TEXT NOT NULL,
	source_type  TEXT NOT NULL,
	native_id    TEXT NOT NULL,
	dismissed_at DATETIME NOT NULL,
	PRIMARY KEY (viewer_id, source_type, native_id)
);

CREATE INDEX IF NOT EXISTS idx_conversations_last_message_at
	ON conversations(last_message_at);
CREATE INDEX IF NOT EXISTS idx_participants_viewer
	ON conversation_participants(viewer_id);
CREATE INDEX IF NOT EXISTS idx_messages_conversation
	ON messages(conversation_id, created_at);
CREATE INDEX IF NOT EXISTS idx_announcements_published
	ON announcements(published, published_at);
CREATE INDEX IF NOT EXISTS idx_alerts_viewer ON alerts(viewer_id, created_at);
CREATE INDEX IF NOT EXISTS idx_tickets_updated_at ON tickets(updated_at);
CREATE INDEX IF NOT EXISTS idx_ticket_comments_ticket
	ON ticket_comments(ticket_id, created_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_alerts_viewer_unread
	ON alerts(viewer_id, read_at);
CREATE INDEX IF NOT EXISTS idx_participants_unread
	ON conversation_participants(viewer_id, unread_count);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
