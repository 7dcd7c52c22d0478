package repository

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound         = errors.New("document not found")
	ErrInvalidID        = errors.New("invalid document id")
	ErrPermissionDenied = errors.New("permission denied")
)

// codeUnauthorized is the MongoDB server code for an operation the
// authenticated user has no privilege for.
const codeUnauthorized = 13

// PermissionError replaces a raw authorization failure from the store with
// a message telling the operator what to fix.
type PermissionError struct {
	Collection string
	Err        error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf(
		"MongoDB permission denied on %q. Grant the user in MONGODB_URI the readWrite role on the MONGODB_DATABASE database (Atlas → Database Access), then restart the server.",
		e.Collection,
	)
}

func (e *PermissionError) Unwrap() error { return e.Err }

func (e *PermissionError) Is(target error) bool { return target == ErrPermissionDenied }

func isPermissionError(err error) bool {
	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorCode(codeUnauthorized) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "permission") || strings.Contains(msg, "not authorized")
}

// translate rewrites permission failures; every other error passes through.
func translate(collection string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if isPermissionError(err) {
		return &PermissionError{Collection: collection, Err: err}
	}
	return err
}
