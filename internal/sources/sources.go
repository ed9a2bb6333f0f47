// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources implements the bibliographic source clients: Scopus
// (abstract/citation index), OpenAlex (works/affiliation index) and VIAF
// (authority file). Each client declares its own strategy-tier cascade and
// decodes its wire format into the shared MatchCandidate shape.
//
// See docs/ARCHITECTURE § Sources.
package sources

import (
	"errors"
	"fmt"
)

// ErrNoResponse marks a transport failure: the source could not be
// reached at all.
var ErrNoResponse = errors.New("no response from source")

// DecodeError marks an undecodable response body.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: undecodable response: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ServiceError marks a source-reported service error with its status code.
type ServiceError struct {
	Source string
	Code   int
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: service error HTTP %d", e.Source, e.Code)
}
