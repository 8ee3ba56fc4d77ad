// Package createitem implements the Register Item use case.
//
// The name is trimmed and must not be empty. The item gets a fresh time-ordered ID.
package createitem
