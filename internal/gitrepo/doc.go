// Package gitrepo contains helpers for interrogating and manipulating Git repositories.
//
// It exposes RepositoryManager for cloning, syncing, and publishing repository
// changes, consumed by the iteration service that needs structured Git
// operations.
package gitrepo
