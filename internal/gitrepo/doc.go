// Package gitrepo contains helpers shared by repository-oriented components.
//
// It normalizes remote transport URLs, derives directory-safe repository
// slugs, and resolves optional access credentials from the environment.
package gitrepo
