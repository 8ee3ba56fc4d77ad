// Package createuser implements the Register User use case.
//
// The name is trimmed and must not be empty. The user gets a fresh time-ordered ID.
package createuser
