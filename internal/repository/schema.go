package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []struct {
	name  string
	query string
}{
	{
		name: "events",
		query: `
CREATE TABLE IF NOT EXISTS events (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	organization_id UUID NOT NULL,
	title VARCHAR(255) NOT NULL,
	venue VARCHAR(255) NOT NULL DEFAULT '',
	status VARCHAR(32) NOT NULL DEFAULT 'scheduled',
	start_date TIMESTAMP WITH TIME ZONE NOT NULL,
	end_date TIMESTAMP WITH TIME ZONE
);`,
	},
	{
		name: "ticket_types",
		query: `
CREATE TABLE IF NOT EXISTS ticket_types (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	event_id UUID NOT NULL REFERENCES events(id),
	name VARCHAR(255) NOT NULL
);`,
	},
	{
		name: "tickets",
		query: `
CREATE TABLE IF NOT EXISTS tickets (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	ticket_type_id UUID NOT NULL REFERENCES ticket_types(id),
	status VARCHAR(32) NOT NULL DEFAULT 'valid'
		CHECK (status IN ('valid', 'scanned', 'cancelled', 'refunded', 'transferred')),
	attendee_name VARCHAR(255) NOT NULL DEFAULT '',
	attendee_email VARCHAR(255) NOT NULL DEFAULT '',
	scanned_at TIMESTAMP WITH TIME ZONE,
	scanned_by VARCHAR(255),
	metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
	CHECK ((status = 'scanned') = (scanned_at IS NOT NULL))
);`,
	},
	{
		name: "staff_roles",
		query: `
CREATE TABLE IF NOT EXISTS staff_roles (
	staff_id VARCHAR(255) NOT NULL,
	organization_id UUID NOT NULL,
	role VARCHAR(32) NOT NULL,
	PRIMARY KEY (staff_id, organization_id, role)
);`,
	},
	{
		name: "audit_logs",
		query: `
CREATE TABLE IF NOT EXISTS audit_logs (
	id UUID PRIMARY KEY,
	table_name VARCHAR(64) NOT NULL,
	record_id VARCHAR(255) NOT NULL,
	action VARCHAR(64) NOT NULL,
	old_values JSONB,
	new_values JSONB,
	user_id VARCHAR(255) NOT NULL,
	user_email VARCHAR(255) NOT NULL DEFAULT '',
	created_at TIMESTAMP WITH TIME ZONE NOT NULL
);`,
	},
	{
		name: "datalake_events",
		query: `
CREATE TABLE IF NOT EXISTS datalake_events (
	event_id UUID PRIMARY KEY,
	published_at TIMESTAMP WITH TIME ZONE NOT NULL,
	event_name VARCHAR(255) NOT NULL,
	event_payload JSONB NOT NULL
);`,
	},
	{
		name: "read_model_event_attendance",
		query: `
CREATE TABLE IF NOT EXISTS read_model_event_attendance (
	event_id UUID PRIMARY KEY,
	payload JSONB NOT NULL
);`,
	},
}

func InitializeDBSchema(ctx context.Context, db *sqlx.DB) error {
	for _, table := range schema {
		if _, err := db.ExecContext(ctx, table.query); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}
	return nil
}
