package migrations

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	chstore "collection-governance/internal/storage/clickhouse"
)

// RunClickhouseMigrations creates the database named in dsn, applies the
// Clickhouse set statement by statement and returns a connection to that
// database for the activity store.
func RunClickhouseMigrations(ctx context.Context, dsn string, logger *log.Logger) (*chstore.Conn, error) {
	if logger == nil {
		logger = log.Default()
	}
	dbName, err := databaseFromDSN(dsn)
	if err != nil {
		return nil, err
	}

	migs, err := Clickhouse.Load()
	if err != nil {
		return nil, err
	}
	for _, m := range migs {
		if err := validateNoSemicolonInStrings(m.SQL); err != nil {
			return nil, fmt.Errorf("validate %s migration %s: %w", Clickhouse.Name, m.File, err)
		}
	}

	adminConn, err := chstore.NewConnWithDatabase(ctx, dsn, "")
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse admin: %w", err)
	}
	if err := adminConn.Exec(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", dbName)); err != nil {
		adminConn.Close()
		return nil, fmt.Errorf("create database %s: %w", dbName, err)
	}
	if err := adminConn.Close(); err != nil {
		return nil, fmt.Errorf("close admin connection: %w", err)
	}

	conn, err := chstore.NewConnWithDatabase(ctx, dsn, dbName)
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse db: %w", err)
	}

	// The driver runs one statement per Exec.
	for _, m := range migs {
		for i, stmt := range splitStatements(m.SQL) {
			if err := conn.Exec(ctx, stmt); err != nil {
				conn.Close()
				return nil, fmt.Errorf("apply %s migration %s statement %d: %w", Clickhouse.Name, m.File, i+1, err)
			}
		}
		logger.Printf("Applied %s migration %s to %s", Clickhouse.Name, m.File, dbName)
	}

	return conn, nil
}

// splitStatements drops blank and -- comment lines and splits the rest on
// semicolons. Migrations must not put semicolons inside string literals or
// block comments; validateNoSemicolonInStrings rejects the former.
func splitStatements(input string) []string {
	var filtered []string
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		filtered = append(filtered, line)
	}
	joined := strings.Join(filtered, "\n")

	var stmts []string
	for _, part := range strings.Split(joined, ";") {
		stmt := strings.TrimSpace(part)
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// validateNoSemicolonInStrings rejects a semicolon inside a single-quoted
// literal. A doubled quote is an escaped quote.
func validateNoSemicolonInStrings(sql string) error {
	inString := false
	for i := 0; i < len(sql); i++ {
		switch {
		case sql[i] == '\'' && inString && i+1 < len(sql) && sql[i+1] == '\'':
			i++
		case sql[i] == '\'':
			inString = !inString
		case sql[i] == ';' && inString:
			return fmt.Errorf("semicolon inside string literal at offset %d", i)
		}
	}
	return nil
}

func databaseFromDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse clickhouse dsn: %w", err)
	}
	db := strings.TrimPrefix(u.Path, "/")
	if db == "" {
		return "", fmt.Errorf("clickhouse dsn %q names no database", u.Redacted())
	}
	return db, nil
}
