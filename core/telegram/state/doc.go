// Package state keeps per-chat conversation sessions: the current dialog step
// plus small JSON values such as a shopping cart. Sessions are stored either in
// Redis (production) or in process memory (tests and local runs).
package state
