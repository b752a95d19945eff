// Package storage holds the key/value and session store adapters.
//
// Drivers live in subpackages:
//   - sqlite: durable default, a single-file database
//   - postgres: durable, for deployments that already run PostgreSQL
//   - memory: ephemeral, for tests and throwaway runs
//   - session: the in-process session cache
//
// Open selects a durable driver from configuration.
package storage
