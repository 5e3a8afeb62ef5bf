package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeConcurrentUpdate, status: http.StatusConflict, publicMsg: "resource was modified concurrently", retryable: true},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeInsufficientStock, status: http.StatusUnprocessableEntity, publicMsg: "insufficient stock", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "foo"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeDependency, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestIsCodeAndRetryableThroughWrapping(t *testing.T) {
	conflict := fmt.Errorf("transition: %w", New(CodeConcurrentUpdate, "order changed"))
	if !IsCode(conflict, CodeConcurrentUpdate) {
		t.Fatal("expected wrapped conflict to be detected")
	}
	if !IsRetryable(conflict) {
		t.Fatal("conflict should be retryable")
	}

	stock := New(CodeInsufficientStock, "not enough")
	if IsRetryable(stock) {
		t.Fatal("insufficient stock must not be retryable")
	}
	if IsRetryable(stdErrors.New("plain")) {
		t.Fatal("untyped errors are not retryable")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := fmt.Errorf("outer: %w", Wrap(CodeDependency, stdErrors.New("inner"), "load order"))
	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("unexpected code %s", dump.Code)
	}
	if len(dump.Chain) != 3 {
		t.Fatalf("expected 3 chain entries, got %d: %v", len(dump.Chain), dump.Chain)
	}
	if !dump.Retryable {
		t.Fatal("dependency failures are retryable")
	}
	if dump.PG != nil {
		t.Fatal("expected no postgres detail")
	}
}

func TestDumpExtractsPostgresDetail(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23514", ConstraintName: "products_stock_qty_check", TableName: "products"}
	dump := Dump(Wrap(CodeInternal, pgErr, "deduct stock"))
	if dump.PG == nil || dump.PG.Code != "23514" {
		t.Fatalf("expected pg detail, got %+v", dump.PG)
	}
	fields := dump.Fields()
	if fields["pg_constraint"] != "products_stock_qty_check" {
		t.Fatalf("unexpected fields %v", fields)
	}
}
