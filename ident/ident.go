// Package ident generates the opaque identifiers given to every stored row.
package ident

import "github.com/gofrs/uuid"

// New returns a random (version 4) UUID in its canonical string form.
func New() string {
	return uuid.Must(uuid.NewV4()).String()
}
