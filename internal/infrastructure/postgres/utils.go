package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// limitArg convierte limit <= 0 en NULL: LIMIT NULL equivale a sin límite.
func limitArg(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}

func offsetArg(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// nullableText guarda "" como NULL (claves opcionales con índice único).
func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

