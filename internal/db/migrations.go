package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'estimate_status') THEN
			CREATE TYPE estimate_status AS ENUM ('draft', 'sent', 'approved', 'rejected');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'calculation_type') THEN
			CREATE TYPE calculation_type AS ENUM ('usd', 'cash-local', 'cashless-local');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'estimate_item_type') THEN
			CREATE TYPE estimate_item_type AS ENUM ('equipment', 'work', 'delivery');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'work_report_status') THEN
			CREATE TYPE work_report_status AS ENUM ('draft', 'submitted', 'approved', 'paid');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'payment_status') THEN
			CREATE TYPE payment_status AS ENUM ('planned', 'paid', 'overdue');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS personnel (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		full_name VARCHAR(255) NOT NULL,
		salary NUMERIC(18,2) NOT NULL DEFAULT 0 CHECK (salary >= 0),
		rate_percentage NUMERIC(5,2) NOT NULL DEFAULT 0 CHECK (rate_percentage BETWEEN 0 AND 100),
		drivers_license VARCHAR(64),
		phone VARCHAR(64),
		address TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS work_items (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		unit VARCHAR(32),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		client_id UUID,
		venue_id UUID,
		event_date DATE NOT NULL,
		load_in_date DATE,
		load_out_date DATE,
		status VARCHAR(32) NOT NULL DEFAULT 'planning',
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS budget_items (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		work_item_id UUID REFERENCES work_items(id),
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS budget_item_personnel (
		budget_item_id UUID NOT NULL REFERENCES budget_items(id) ON DELETE CASCADE,
		personnel_id UUID NOT NULL REFERENCES personnel(id),
		PRIMARY KEY (budget_item_id, personnel_id)
	);`,
	`CREATE TABLE IF NOT EXISTS estimates (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		estimate_number VARCHAR(64) NOT NULL,
		version INT NOT NULL DEFAULT 1 CHECK (version >= 1),
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		event_id UUID REFERENCES events(id),
		calculation_type calculation_type NOT NULL,
		usd_rate NUMERIC(18,4) CHECK (usd_rate > 0),
		status estimate_status NOT NULL DEFAULT 'draft',
		total_usd NUMERIC(18,2) NOT NULL DEFAULT 0,
		total_byn NUMERIC(18,2) NOT NULL DEFAULT 0,
		created_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_estimate_version
		ON estimates (estimate_number, version);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_estimate_active_per_lineage
		ON estimates (estimate_number, COALESCE(event_id, '00000000-0000-0000-0000-000000000000'::uuid))
		WHERE is_active;`,
	`CREATE TABLE IF NOT EXISTS estimate_items (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		estimate_id UUID NOT NULL REFERENCES estimates(id) ON DELETE CASCADE,
		item_type estimate_item_type NOT NULL,
		equipment_id UUID,
		work_type VARCHAR(255),
		quantity INT NOT NULL CHECK (quantity >= 1),
		days INT NOT NULL DEFAULT 1 CHECK (days >= 1),
		price_usd NUMERIC(18,2) NOT NULL CHECK (price_usd >= 0),
		distance_km NUMERIC(10,2) CHECK (distance_km >= 0),
		total_usd NUMERIC(18,2) NOT NULL DEFAULT 0,
		total_byn NUMERIC(18,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_estimate_items_estimate_id ON estimate_items (estimate_id);`,
	`CREATE TABLE IF NOT EXISTS work_reports (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		event_id UUID NOT NULL REFERENCES events(id),
		estimate_id UUID REFERENCES estimates(id),
		report_date DATE NOT NULL,
		status work_report_status NOT NULL DEFAULT 'draft',
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_work_reports_event_id ON work_reports (event_id);`,
	`CREATE TABLE IF NOT EXISTS work_distributions (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		work_report_id UUID NOT NULL REFERENCES work_reports(id) ON DELETE CASCADE,
		estimate_item_id UUID REFERENCES estimate_items(id),
		staff_id UUID NOT NULL REFERENCES personnel(id),
		share_percentage NUMERIC(5,2) NOT NULL CHECK (share_percentage BETWEEN 0 AND 100),
		payment_percentage NUMERIC(5,2) NOT NULL CHECK (payment_percentage BETWEEN 0 AND 100),
		amount_byn NUMERIC(18,2) NOT NULL CHECK (amount_byn >= 0),
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_work_distribution_staff
		ON work_distributions (work_report_id, staff_id);`,
	`CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		personnel_id UUID NOT NULL REFERENCES personnel(id),
		event_id UUID REFERENCES events(id),
		budget_item_id UUID REFERENCES budget_items(id),
		work_item_id UUID REFERENCES work_items(id),
		work_report_id UUID REFERENCES work_reports(id),
		month DATE NOT NULL,
		amount NUMERIC(18,2) NOT NULL CHECK (amount >= 0),
		status payment_status NOT NULL DEFAULT 'planned',
		payment_date DATE,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK ((status = 'paid') = (payment_date IS NOT NULL))
	);`,
	`CREATE INDEX IF NOT EXISTS idx_payments_month ON payments (month);`,
	`CREATE INDEX IF NOT EXISTS idx_payments_personnel_id ON payments (personnel_id);`,
	`CREATE INDEX IF NOT EXISTS idx_payments_status ON payments (status);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
