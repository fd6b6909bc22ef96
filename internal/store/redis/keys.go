package redis

import "fmt"

const (
	// KeyPrefixProgram is the prefix for snapshot program keys
	KeyPrefixProgram = "launchpad:program:"
	// KeyAllPrograms is the set of program IDs in the current snapshot
	KeyAllPrograms = "launchpad:programs:all"
	// KeyCatalogMeta holds the snapshot's count and reload time
	KeyCatalogMeta = "launchpad:catalog:meta"
	// KeyPrefixRuns is the prefix for per-job run history lists
	KeyPrefixRuns = "launchpad:jobs:runs:"
	// KeyDiscoverySeen is the set of candidate keys discovery already handled
	KeyDiscoverySeen = "launchpad:discovery:seen"
)

// ProgramKey returns the Redis key for a program by ID
func ProgramKey(id string) string {
	return KeyPrefixProgram + id
}

// RunsKey returns the run history list for a job
func RunsKey(job string) string {
	return KeyPrefixRuns + job
}

// ExtractProgramID extracts the program ID from a Redis key
func ExtractProgramID(key string) (string, error) {
	if len(key) <= len(KeyPrefixProgram) || key[:len(KeyPrefixProgram)] != KeyPrefixProgram {
		return "", fmt.Errorf("invalid program key: %s", key)
	}
	return key[len(KeyPrefixProgram):], nil
}
