package loader

import "fmt"

// ErrUnsupportedScheme is returned by New when a DSN's scheme has no
// registered native loader.
var ErrUnsupportedScheme = fmt.Errorf("unsupported database scheme")

// UnsupportedSchemeError names the offending scheme and DSN.
type UnsupportedSchemeError struct {
	Scheme string
	DSN    string
}

func (e *UnsupportedSchemeError) Error() string {
	return fmt.Sprintf("unsupported database scheme %q in dsn %q", e.Scheme, e.DSN)
}

func (e *UnsupportedSchemeError) Is(target error) bool {
	return target == ErrUnsupportedScheme
}

// ErrTableNotFound is returned when a production or staging table expected
// by a load operation does not exist.
var ErrTableNotFound = fmt.Errorf("table not found")

// TableNotFoundError names the missing table.
type TableNotFoundError struct {
	Table string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("table %q not found", e.Table)
}

func (e *TableNotFoundError) Is(target error) bool {
	return target == ErrTableNotFound
}

// ConstraintViolationError wraps a database-reported constraint failure
// during bulk load or apply with the table it occurred against.
type ConstraintViolationError struct {
	Table string
	Err   error
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("constraint violation loading %q: %v", e.Table, e.Err)
}

func (e *ConstraintViolationError) Unwrap() error {
	return e.Err
}

// TransactionError wraps a failure that occurred inside a transaction that
// was rolled back; Err is the underlying database error.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction failed during %s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}
