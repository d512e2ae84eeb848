// Package storage persists the broadcast subscriber set so a restart does
// not forget who asked for alerts.
//
// It currently supports:
//   - a dependency-free JSON file backend
//   - an optional SQLite backend (build with -tags sqlite)
package storage
