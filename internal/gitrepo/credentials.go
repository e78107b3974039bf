package gitrepo

import (
	"os"
	"strings"
)

// Environment variable names consulted for repository credentials.
const (
	EnvCorpusToken    = "GITCORPUS_TOKEN"
	EnvGitAccessToken = "GIT_ACCESS_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
)

var credentialPreference = []string{
	EnvCorpusToken,
	EnvGitAccessToken,
	EnvGitHubToken,
}

// ResolveCredential returns the first non-empty access token observed in the
// provided environment map or the process environment.
func ResolveCredential(environment map[string]string) (string, bool) {
	for _, key := range credentialPreference {
		if value, ok := lookupCredential(environment, key); ok {
			return value, true
		}
	}
	for _, key := range credentialPreference {
		if value, ok := os.LookupEnv(key); ok {
			value = strings.TrimSpace(value)
			if len(value) > 0 {
				return value, true
			}
		}
	}
	return "", false
}

func lookupCredential(environment map[string]string, key string) (string, bool) {
	if environment == nil {
		return "", false
	}
	value, exists := environment[key]
	if !exists {
		return "", false
	}
	value = strings.TrimSpace(value)
	if len(value) == 0 {
		return "", false
	}
	return value, true
}
