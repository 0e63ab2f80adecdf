package database

import (
	"context"
	"database/sql"
	"fmt"
)

// The DDL is kept to the subset MySQL and SQLite both accept.
const createProductionOrdersTable = `
CREATE TABLE IF NOT EXISTS production_orders (
	id                 VARCHAR(36)   NOT NULL PRIMARY KEY,
	client_name        VARCHAR(255)  NOT NULL DEFAULT '',
	product_name       VARCHAR(255)  NOT NULL DEFAULT '',
	quantity           DOUBLE        NOT NULL DEFAULT 0,
	unit               VARCHAR(32)   NOT NULL DEFAULT '',
	color              VARCHAR(255)  NOT NULL DEFAULT '',
	yarn_type          VARCHAR(255)  NOT NULL DEFAULT '',
	weight             VARCHAR(255)  NOT NULL DEFAULT '',
	work_site          VARCHAR(255)  NOT NULL DEFAULT '',
	manager            VARCHAR(255)  NOT NULL DEFAULT '',
	contact            VARCHAR(255)  NOT NULL DEFAULT '',
	order_type         VARCHAR(255)  NOT NULL DEFAULT '',
	order_date         VARCHAR(32)   NOT NULL DEFAULT '',
	delivery_date      VARCHAR(32)   NOT NULL DEFAULT '',
	delivery_to        VARCHAR(255)  NOT NULL DEFAULT '',
	email_sent_date    VARCHAR(32)   NOT NULL DEFAULT '',
	status             VARCHAR(32)   NOT NULL DEFAULT 'RECEIPT_RECORDED',
	weaving_date       VARCHAR(32)   NOT NULL DEFAULT '',
	dyeing_date        VARCHAR(32)   NOT NULL DEFAULT '',
	sewing_date        VARCHAR(32)   NOT NULL DEFAULT '',
	shipping_date      VARCHAR(32)   NOT NULL DEFAULT '',
	shipping_method    VARCHAR(255)  NOT NULL DEFAULT '',
	shipping_dest_name VARCHAR(255)  NOT NULL DEFAULT '',
	note               VARCHAR(2000) NOT NULL DEFAULT '',
	last_updated       VARCHAR(32)   NOT NULL DEFAULT ''
)`

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createProductionOrdersTable); err != nil {
		return fmt.Errorf("creating production_orders table: %w", err)
	}
	return nil
}
