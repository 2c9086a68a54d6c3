package gitrepo

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	sshSchemePrefixConstant          = "ssh://"
	scpUserPrefixConstant            = "git@"
	scpPathDelimiterConstant         = ":"
	pathSeparatorConstant            = "/"
	gitSuffixConstant                = ".git"
	remoteURLParseTemplateConstant   = "%s: %s"
	invalidRemoteURLMessageConstant  = "invalid remote url"
	requiredValueMessageConstant     = "value required"
	unsupportedSchemeMessageConstant = "unsupported remote scheme"
	httpsSchemeConstant              = "https"
	httpSchemeConstant               = "http"
	sshSchemeConstant                = "ssh"
)

// RemoteProtocol enumerates the transports a remote URL can use.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
)

// RemoteURL is a remote location reduced to host, owner and repository.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// SameRepository reports whether both URLs name the same repository regardless of transport.
func (remote RemoteURL) SameRepository(other RemoteURL) bool {
	return strings.EqualFold(remote.Host, other.Host) &&
		strings.EqualFold(remote.Owner, other.Owner) &&
		strings.EqualFold(remote.Repository, other.Repository)
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseTemplateConstant, parseError.Input, parseError.Message)
}

// ParseRemoteURL accepts https://host/owner/repo(.git), ssh://git@host/owner/repo(.git) and git@host:owner/repo(.git).
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	if strings.HasPrefix(trimmedRemote, scpUserPrefixConstant) && !strings.HasPrefix(trimmedRemote, sshSchemePrefixConstant) {
		hostAndPath := strings.TrimPrefix(trimmedRemote, scpUserPrefixConstant)
		host, path, found := strings.Cut(hostAndPath, scpPathDelimiterConstant)
		if !found {
			return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
		}
		return buildRemoteURL(remote, RemoteProtocolSSH, host, path)
	}

	parsedURL, parseError := url.Parse(trimmedRemote)
	if parseError != nil {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: parseError.Error()}
	}
	switch parsedURL.Scheme {
	case httpsSchemeConstant, httpSchemeConstant:
		return buildRemoteURL(remote, RemoteProtocolHTTPS, parsedURL.Hostname(), parsedURL.Path)
	case sshSchemeConstant:
		return buildRemoteURL(remote, RemoteProtocolSSH, parsedURL.Hostname(), parsedURL.Path)
	default:
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: unsupportedSchemeMessageConstant}
	}
}

func buildRemoteURL(input string, protocol RemoteProtocol, host string, path string) (RemoteURL, error) {
	segments := strings.Split(strings.Trim(path, pathSeparatorConstant), pathSeparatorConstant)
	if len(host) == 0 || len(segments) != 2 {
		return RemoteURL{}, RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	owner := segments[0]
	repository := strings.TrimSuffix(segments[1], gitSuffixConstant)
	if len(owner) == 0 || len(repository) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	return RemoteURL{Protocol: protocol, Host: host, Owner: owner, Repository: repository}, nil
}
