// Package kiln fetches per-network staking statistics from the Kiln API and
// aggregates them across every supported chain.
package kiln
