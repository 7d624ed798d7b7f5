// Package models holds the persistence-facing structs shared by repositories
// and services.
package models

// Principal is the identity acting on a request, derived per-request from a
// verified access token. A nil *Principal means the caller is anonymous.
type Principal struct {
	ID string
}
