package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/nlsql/internal/errs"
	"github.com/roach88/nlsql/internal/schema"
	"github.com/roach88/nlsql/internal/store"
)

// Error code constants for command errors. Synthesis failures use the
// pipeline's own codes instead.
const (
	ErrCodeGeneric    = "E001" // Generic/unknown error
	ErrCodeLoadFailed = "E004" // Schema file could not be read or parsed
	ErrCodeNotFound   = "E005" // Path or record not found
)

// LoadError represents an error that occurred while loading a schema.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// loadCatalog reads the schema file at path into a Catalog.
func loadCatalog(ctx context.Context, path string) (*schema.Catalog, error) {
	if path == "" {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "--schema is required"}
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("schema file not found: %s", path)}
	}

	c, err := store.LoadCatalog(ctx, path)
	if err != nil {
		code := ErrCodeLoadFailed
		if errs.Is(err, errs.CodeSchemaInvalid) {
			code = string(errs.CodeSchemaInvalid)
		}
		return nil, &LoadError{Code: code, Message: fmt.Sprintf("failed to load schema %s", path), Err: err}
	}
	return c, nil
}

// loadErrorCode returns the code of a LoadError, or ErrCodeGeneric.
func loadErrorCode(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return ErrCodeGeneric
}
