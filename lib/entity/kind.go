// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package entity

import "fmt"

// Kind identifies one entity collection. The string value is the
// "model" name used on the change feed.
type Kind string

const (
	Member   Kind = "member"
	Schedule Kind = "schedule"
	Payment  Kind = "payment"
	Bill     Kind = "bill"
	Repair   Kind = "repair"
)

var kinds = []Kind{Member, Schedule, Payment, Bill, Repair}

// Kinds returns every kind in display order.
func Kinds() []Kind {
	return append([]Kind(nil), kinds...)
}

// ParseKind returns the Kind named by s.
func ParseKind(s string) (Kind, error) {
	kind := Kind(s)
	if !kind.Valid() {
		return "", fmt.Errorf("entity: unknown kind %q", s)
	}
	return kind, nil
}

// Valid reports whether k is one of the five known kinds.
func (k Kind) Valid() bool {
	switch k {
	case Member, Schedule, Payment, Bill, Repair:
		return true
	}
	return false
}

// Plural returns the collection name ("members", "schedules", ...).
func (k Kind) Plural() string {
	return string(k) + "s"
}

// Path returns the REST collection path relative to the API base,
// with the trailing slash the server's router expects.
func (k Kind) Path() string {
	return "/" + k.Plural() + "/"
}

func (k Kind) String() string { return string(k) }
