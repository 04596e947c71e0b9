// Package schema holds the SQL that prepares a database for the tasks
// table and applies it over a direct Postgres connection.
package schema

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Policy names accepted by Script.
const (
	PolicyPermissive = "permissive"
	PolicyOwner      = "owner"
)

// Baseline creates the tasks table with row level security and a policy
// that allows every operation to every caller, anonymous included.
const Baseline = `-- Create tasks table
CREATE TABLE IF NOT EXISTS public.tasks (
    id BIGSERIAL PRIMARY KEY,
    title TEXT NOT NULL,
    completed BOOLEAN DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT TIMEZONE('utc'::text, NOW()) NOT NULL
);

-- Enable row level security
ALTER TABLE public.tasks ENABLE ROW LEVEL SECURITY;

-- Allow all operations
DROP POLICY IF EXISTS "Allow all operations on tasks" ON public.tasks;
CREATE POLICY "Allow all operations on tasks" ON public.tasks
    FOR ALL USING (true) WITH CHECK (true);

-- Grant permissions
GRANT ALL ON public.tasks TO anon;
GRANT ALL ON public.tasks TO authenticated;
GRANT ALL ON SEQUENCE public.tasks_id_seq TO anon;
GRANT ALL ON SEQUENCE public.tasks_id_seq TO authenticated;
`

// OwnerScoped restricts each row to the user that owns it. It adds the
// owning column and replaces the permissive policy. Rows inserted by this
// client carry no owner, so they become invisible once it is applied.
const OwnerScoped = `-- Add the owning user column
ALTER TABLE public.tasks ADD COLUMN IF NOT EXISTS user_id UUID REFERENCES auth.users(id);

-- Replace the permissive policy with a per-user one
DROP POLICY IF EXISTS "Allow all operations on tasks" ON public.tasks;
DROP POLICY IF EXISTS "Users can only see their own tasks" ON public.tasks;
CREATE POLICY "Users can only see their own tasks" ON public.tasks
    FOR ALL USING (auth.uid() = user_id) WITH CHECK (auth.uid() = user_id);
`

// ErrUnknownPolicy is returned by Script for an unrecognised policy name.
var ErrUnknownPolicy = errors.New("unknown policy")

// ErrNoDatabaseURL is returned by Apply when no connection string is set.
var ErrNoDatabaseURL = errors.New("database url not configured (set DATABASE_URL)")

// Script returns the SQL for the named policy. The owner script includes
// the baseline so it can run against an empty database.
func Script(policy string) (string, error) {
	switch policy {
	case "", PolicyPermissive:
		return Baseline, nil
	case PolicyOwner:
		return Baseline + "\n" + OwnerScoped, nil
	default:
		return "", fmt.Errorf("%w: %s (want %s or %s)", ErrUnknownPolicy, policy, PolicyPermissive, PolicyOwner)
	}
}

// Apply runs sql in a single transaction on the database at dsn.
func Apply(ctx context.Context, dsn, sql string, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	if dsn == "" {
		return ErrNoDatabaseURL
	}

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.Ping(pingCtx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	cfg := conn.Config()
	log.Debug("connected to postgres", zap.String("host", cfg.Host), zap.String("db", cfg.Database))

	// Without arguments pgx uses the simple protocol, which accepts a
	// multi-statement script.
	err = pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, sql)
		return err
	})
	if err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	log.Info("schema applied", zap.String("db", cfg.Database))
	return nil
}
