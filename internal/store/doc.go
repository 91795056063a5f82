// Package store provides durable storage for recorded call artifacts.
//
// Two implementations share one contract (Create, Lookup):
//   - SQLite: append-only artifact log on disk
//   - Memory: process-local store for tests and embedded use
//
// # Matching
//
// Keys identify an operation, not a particular call. Lookup first looks for
// the latest artifact recorded under the key with the same argument digest.
// Under MatchKey (the default) it then falls back to the latest artifact
// under the key alone; MatchExact disables the fallback.
//
// # Ordering
//
// Every artifact gets a seq from the store. Repeated recordings of one
// operation are all kept; "latest" means highest seq. Concurrent creates
// for the same key never overwrite each other.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
