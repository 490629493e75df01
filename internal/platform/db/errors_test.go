package db

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(pgx.ErrNoRows) {
		t.Error("expected pgx.ErrNoRows to be not-found")
	}
	if !IsNotFound(fmt.Errorf("load: %w", pgx.ErrNoRows)) {
		t.Error("expected wrapped pgx.ErrNoRows to be not-found")
	}
	if IsNotFound(fmt.Errorf("boom")) {
		t.Error("expected plain error not to be not-found")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "opd_queues_department_id_visit_date_token_number_key"}
	if !IsUniqueViolation(err) {
		t.Error("expected 23505 to be a unique violation")
	}
	if !IsUniqueViolation(fmt.Errorf("insert: %w", err)) {
		t.Error("expected wrapped 23505 to be a unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("expected 23503 not to be a unique violation")
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	if !IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("expected 23503 to be a foreign-key violation")
	}
	if IsForeignKeyViolation(pgx.ErrNoRows) {
		t.Error("expected ErrNoRows not to be a foreign-key violation")
	}
}

func TestIsCheckViolation(t *testing.T) {
	if !IsCheckViolation(&pgconn.PgError{Code: "23514"}) {
		t.Error("expected 23514 to be a check violation")
	}
	if IsCheckViolation(&pgconn.PgError{Code: "23505"}) {
		t.Error("expected 23505 not to be a check violation")
	}
}
