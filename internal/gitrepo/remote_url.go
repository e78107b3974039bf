package gitrepo

import (
	"fmt"
	"strings"
)

const (
	gitSuffixConstant                   = ".git"
	pathSeparatorConstant               = "/"
	slugSeparatorConstant               = "-"
	hostAnchorConstant                  = "com/"
	httpsProtocolPrefixConstant         = "https://"
	httpProtocolPrefixConstant          = "http://"
	sshProtocolPrefixConstant           = "ssh://"
	gitUserPrefixConstant               = "git@"
	sshPathDelimiterConstant            = ":"
	defaultRepositorySlugConstant       = "repository"
	credentialUserTemplateConstant      = "%s%s:%s@%s"
	credentialUserNameConstant          = "x-access-token"
	remoteURLRequiredMessageConstant    = "remote url must be provided"
	remoteURLParseErrorTemplateConstant = "%s: %s"
)

// RemoteURLError indicates a remote string could not be processed.
type RemoteURLError struct {
	Input   string
	Message string
}

// Error describes the remote URL failure.
func (remoteError RemoteURLError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, remoteError.Input, remoteError.Message)
}

// NormalizeTransportURL returns the remote URL used for cloning, ensuring the .git suffix.
func NormalizeTransportURL(remoteURL string) (string, error) {
	trimmedRemote := strings.TrimSpace(remoteURL)
	if len(trimmedRemote) == 0 {
		return "", RemoteURLError{Input: remoteURL, Message: remoteURLRequiredMessageConstant}
	}

	if strings.HasSuffix(trimmedRemote, gitSuffixConstant) {
		return trimmedRemote, nil
	}

	return trimmedRemote + gitSuffixConstant, nil
}

// DeriveRepositorySlug produces a directory-safe identifier for a remote URL.
//
// The slug is anchored on the final "com/" occurrence when present; otherwise
// the scheme, user information, and host segment are stripped. Every path
// separator in the result is flattened to a dash so nested organization paths
// cannot yield nested directories.
func DeriveRepositorySlug(remoteURL string) string {
	trimmedRemote := strings.TrimSpace(remoteURL)

	candidateSlug := extractSlugCandidate(trimmedRemote)
	candidateSlug = strings.TrimSuffix(candidateSlug, gitSuffixConstant)
	candidateSlug = strings.ReplaceAll(candidateSlug, pathSeparatorConstant, slugSeparatorConstant)
	candidateSlug = strings.Trim(candidateSlug, slugSeparatorConstant)

	if len(candidateSlug) == 0 {
		return defaultRepositorySlugConstant
	}

	return candidateSlug
}

func extractSlugCandidate(remoteURL string) string {
	anchorIndex := strings.LastIndex(remoteURL, hostAnchorConstant)
	if anchorIndex >= 0 {
		return remoteURL[anchorIndex+len(hostAnchorConstant):]
	}

	strippedRemote := remoteURL
	for _, protocolPrefix := range []string{httpsProtocolPrefixConstant, httpProtocolPrefixConstant, sshProtocolPrefixConstant} {
		strippedRemote = strings.TrimPrefix(strippedRemote, protocolPrefix)
	}
	strippedRemote = strings.TrimPrefix(strippedRemote, gitUserPrefixConstant)

	if delimiterIndex := strings.Index(strippedRemote, sshPathDelimiterConstant); delimiterIndex >= 0 {
		return strippedRemote[delimiterIndex+len(sshPathDelimiterConstant):]
	}

	if separatorIndex := strings.Index(strippedRemote, pathSeparatorConstant); separatorIndex >= 0 {
		return strippedRemote[separatorIndex+len(pathSeparatorConstant):]
	}

	return strippedRemote
}

// EmbedCredential injects an access token into an HTTP(S) transport URL.
//
// Non-HTTP transports and empty tokens return the URL unchanged.
func EmbedCredential(transportURL string, accessToken string) string {
	trimmedToken := strings.TrimSpace(accessToken)
	if len(trimmedToken) == 0 {
		return transportURL
	}

	for _, protocolPrefix := range []string{httpsProtocolPrefixConstant, httpProtocolPrefixConstant} {
		if strings.HasPrefix(transportURL, protocolPrefix) {
			remainder := strings.TrimPrefix(transportURL, protocolPrefix)
			return fmt.Sprintf(credentialUserTemplateConstant, protocolPrefix, credentialUserNameConstant, trimmedToken, remainder)
		}
	}

	return transportURL
}
