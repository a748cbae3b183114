package pgstore

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL for the tables this package reads.
func Schema() string {
	return schemaSQL
}

// ApplySchema creates the tables when they do not exist. Intended for
// development databases; production systems usually expose views instead.
func (s *Store) ApplySchema(ctx context.Context) error {
	if s.pool == nil {
		return fmt.Errorf("apply schema: pool not open")
	}
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
