// Package types defines the domain entities the rest of the service
// operates on: Record (the stored triple of user/store/key plus its
// version) and KeyVersion (the shape returned by listing). Nothing in
// this package talks to a database or the network; it exists so the
// engine, the record store drivers, and the wire codec can share one
// vocabulary without importing each other.
package types
