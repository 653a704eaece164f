// Package testinfra starts throwaway containers for integration tests.
//
// Files other than this one carry the integration build tag, so the default
// test run never needs Docker:
//
//	go test -tags integration ./internal/repository/...
//
// Tests call SkipIfNoDocker first and are skipped where no daemon is
// reachable. The first run pulls the postgres image.
package testinfra
