// Package userdetail implements the User Detail query use case.
//
// The result combines the user's identity with their closed loans (including the score
// they gave) and the items they currently hold.
package userdetail
