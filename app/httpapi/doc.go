// Package httpapi exposes the lending features over HTTP with a chi router.
//
// Requests are validated here (trimmed non-empty names, a score in [0, 10], well-formed
// UUIDs) before a command or query reaches its handler. Ledger errors map to statuses:
// not found -> 404, already borrowed or not borrowed by this user -> 409,
// validation -> 400, anything else -> 500. Error bodies are {"error": "..."}.
package httpapi
