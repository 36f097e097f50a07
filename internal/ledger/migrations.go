package ledger

type migration struct {
	version int
	sql     string
}

// migrations must stay sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS processed_emails (
	email_id        TEXT PRIMARY KEY,
	run_id          TEXT NOT NULL DEFAULT '',
	subject         TEXT NOT NULL DEFAULT '',
	reference_url   TEXT NOT NULL DEFAULT '',
	post_id         TEXT NOT NULL DEFAULT '',
	comment_id      TEXT NOT NULL DEFAULT '',
	reference_found INTEGER NOT NULL DEFAULT 0,
	relevant        INTEGER NOT NULL DEFAULT 0,
	response_posted INTEGER NOT NULL DEFAULT 0,
	response_url    TEXT NOT NULL DEFAULT '',
	processed_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_processed_emails_processed_at ON processed_emails(processed_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
ALTER TABLE processed_emails ADD COLUMN excerpt TEXT NOT NULL DEFAULT '';

CREATE INDEX IF NOT EXISTS idx_processed_emails_run_id ON processed_emails(run_id);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
