package repository

import (
	"context"
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	username      VARCHAR(100) PRIMARY KEY,
	password_hash VARCHAR(100) NOT NULL,
	role          VARCHAR(20)  NOT NULL CHECK (role IN ('DOCTOR', 'PATIENT')),
	created_at    TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS child_records (
	application_number VARCHAR(16) PRIMARY KEY,
	name               TEXT             NOT NULL DEFAULT '',
	birth_place        TEXT             NOT NULL DEFAULT '',
	birth_date         DATE             NOT NULL,
	weight_kg          DOUBLE PRECISION NOT NULL,
	height_cm          DOUBLE PRECISION NOT NULL,
	pulse_bpm          INTEGER          NOT NULL,
	last_tracked_date  DATE             NOT NULL
);

CREATE TABLE IF NOT EXISTS visit_records (
	id                 BIGSERIAL PRIMARY KEY,
	application_number VARCHAR(16) NOT NULL REFERENCES child_records (application_number),
	visit_date         DATE        NOT NULL,
	hospital           TEXT        NOT NULL,
	doctor_username    TEXT        NOT NULL DEFAULT '',
	specialization     TEXT        NOT NULL,
	diagnosis          TEXT        NOT NULL DEFAULT '',
	reason             TEXT        NOT NULL,
	medications        TEXT        NOT NULL DEFAULT '',
	allergic_info      TEXT        NOT NULL DEFAULT '',
	wrong_flag         BOOLEAN     NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS visit_records_application_number_idx
	ON visit_records (application_number, visit_date);

CREATE TABLE IF NOT EXISTS vaccination_records (
	application_number VARCHAR(16) NOT NULL REFERENCES child_records (application_number),
	vaccine_name       TEXT        NOT NULL,
	administered_date  DATE        NOT NULL,
	token              VARCHAR(16) NOT NULL,
	CONSTRAINT vaccination_records_pkey PRIMARY KEY (application_number, vaccine_name),
	CONSTRAINT vaccination_records_token_key UNIQUE (token)
);

CREATE TABLE IF NOT EXISTS outbox_events (
	id             VARCHAR(36) PRIMARY KEY,
	aggregate_type VARCHAR(50) NOT NULL,
	aggregate_id   VARCHAR(36) NOT NULL,
	event_type     VARCHAR(50) NOT NULL,
	payload        JSONB       NOT NULL,
	created_at     TIMESTAMP   NOT NULL DEFAULT CURRENT_TIMESTAMP,
	processed_at   TIMESTAMP
);

CREATE OR REPLACE FUNCTION notify_outbox() RETURNS trigger AS $$
BEGIN
	PERFORM pg_notify('outbox_channel', NEW.id);
	RETURN NEW;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS outbox_notify ON outbox_events;
CREATE TRIGGER outbox_notify AFTER INSERT ON outbox_events
	FOR EACH ROW EXECUTE FUNCTION notify_outbox();
`

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
