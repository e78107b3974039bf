// Package gitsync keeps local working copies synchronized with their remotes.
//
// Existing clone directories are updated in place; missing ones are cloned,
// optionally authenticating via a token embedded in the transport URL.
package gitsync
