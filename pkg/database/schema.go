package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// schemaDDL is applied at startup. Every statement is idempotent so the
// service can be restarted against an existing database.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	username TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'user',
	address TEXT NOT NULL DEFAULT '',
	is_verified BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS products (
	id UUID PRIMARY KEY,
	legacy_id BIGINT UNIQUE,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	brand TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	price DOUBLE PRECISION NOT NULL,
	stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
	thumbnail TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS vouchers (
	id UUID PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	receive_start_time TIMESTAMPTZ NOT NULL,
	receive_end_time TIMESTAMPTZ NOT NULL,
	validity_days INTEGER NOT NULL CHECK (validity_days >= 1),
	minimum_purchase DOUBLE PRECISION NOT NULL DEFAULT 0,
	discount_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
	discount_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
	max_discount DOUBLE PRECISION NOT NULL DEFAULT 0,
	description TEXT NOT NULL DEFAULT '',
	total_quantity INTEGER NOT NULL CHECK (total_quantity >= 0),
	claimed_count INTEGER NOT NULL DEFAULT 0,
	used_count INTEGER NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK (claimed_count <= total_quantity),
	CHECK (used_count <= claimed_count)
);

CREATE TABLE IF NOT EXISTS user_vouchers (
	id BIGSERIAL PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	voucher_id UUID NOT NULL REFERENCES vouchers(id) ON DELETE CASCADE,
	claimed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	is_used BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE UNIQUE INDEX IF NOT EXISTS user_vouchers_unused_idx
	ON user_vouchers (user_id, voucher_id) WHERE NOT is_used;

CREATE TABLE IF NOT EXISTS cart_items (
	user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	quantity INTEGER NOT NULL CHECK (quantity > 0),
	unit_price DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (user_id, product_id)
);

CREATE TABLE IF NOT EXISTS orders (
	seq_id TEXT PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users(id),
	receiver_name TEXT NOT NULL,
	receiver_phone TEXT NOT NULL,
	items JSONB NOT NULL,
	applied_vouchers JSONB NOT NULL DEFAULT '[]',
	original_total DOUBLE PRECISION NOT NULL,
	discount DOUBLE PRECISION NOT NULL DEFAULT 0,
	total DOUBLE PRECISION NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	shipping_address TEXT NOT NULL DEFAULT '',
	payment_method TEXT NOT NULL DEFAULT 'cod',
	note TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS orders_user_id_idx ON orders (user_id);
`

// Migrate applies the schema to the connected database.
func Migrate(ctx context.Context, q TxQuerier) error {
	if _, err := q.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	log.Info().Msg("database schema applied")
	return nil
}
