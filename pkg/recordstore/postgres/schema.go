package postgres

// Schema is the DDL for the single logical table the engine needs,
// matching spec.md §6's persisted state layout exactly. Run via the
// vss-server "migrate" subcommand; the driver itself never creates or
// alters schema at runtime.
const Schema = `
CREATE TABLE IF NOT EXISTS vss_records (
	user_token      VARCHAR(120) NOT NULL,
	store_id        TEXT NOT NULL,
	key             VARCHAR(600) NOT NULL,
	value           BYTEA NOT NULL DEFAULT '',
	version         BIGINT NOT NULL,
	created_at      DATE NOT NULL DEFAULT CURRENT_DATE,
	last_updated_at DATE NOT NULL DEFAULT CURRENT_DATE,
	PRIMARY KEY (user_token, store_id, key)
);

CREATE INDEX IF NOT EXISTS vss_records_listing_idx
	ON vss_records (user_token, store_id, key);
`
