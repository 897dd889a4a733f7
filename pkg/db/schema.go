package db

const (
	// SchemaV1 defines the SQL statements for version 1 of the database schema.
	// This schema pertains to the 'notebooksdb' component.
	SchemaV1 = `
CREATE TABLE IF NOT EXISTS infograph_versions (
    component TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    created_at REAL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS notebooks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name VARCHAR(256) NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    infographic_data TEXT,
    infographic_generated_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS notebooks_created_at ON notebooks (created_at);
CREATE INDEX IF NOT EXISTS notebooks_updated_at ON notebooks (updated_at);

CREATE TABLE IF NOT EXISTS sources (
    notebook_id INTEGER NOT NULL REFERENCES notebooks(id) ON DELETE CASCADE,
    id UUID NOT NULL,
    position INTEGER NOT NULL,
    type VARCHAR(16) NOT NULL CHECK (type IN ('text', 'youtube', 'url')),
    content TEXT NOT NULL,
    metadata TEXT NOT NULL DEFAULT '{}',
    added_at TIMESTAMP NOT NULL,
    PRIMARY KEY (notebook_id, id)
);
`
)
