package iteration

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

const (
	credentialsParseErrorTemplate  = "parsing credentials file %s: %w"
	httpsSchemePrefixConstant      = "https://"
	authenticatedURLPrefixTemplate = "https://%s:%s@"
)

type storedCredentials struct {
	Token string `json:"token"`
}

// LoadGitHubToken reads the GitHub token from the JSON credentials file. An
// absent file yields an empty token and anonymous operation rather than an
// error; a malformed file propagates a parse error.
func LoadGitHubToken(fileSystem FileSystem, credentialsPath string) (string, error) {
	credentialsContent, readError := fileSystem.ReadFile(credentialsPath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return "", nil
		}
		return "", readError
	}

	var credentials storedCredentials
	if unmarshalError := json.Unmarshal(credentialsContent, &credentials); unmarshalError != nil {
		return "", fmt.Errorf(credentialsParseErrorTemplate, credentialsPath, unmarshalError)
	}
	return strings.TrimSpace(credentials.Token), nil
}

// BuildAuthenticatedCloneURL embeds the user and token into an https clone
// URL. Anonymous operation and non-https remotes keep the URL unchanged.
func BuildAuthenticatedCloneURL(cloneURL string, userName string, token string) string {
	if len(token) == 0 || len(userName) == 0 {
		return cloneURL
	}
	if !strings.HasPrefix(cloneURL, httpsSchemePrefixConstant) {
		return cloneURL
	}
	authenticatedPrefix := fmt.Sprintf(authenticatedURLPrefixTemplate, userName, token)
	return authenticatedPrefix + strings.TrimPrefix(cloneURL, httpsSchemePrefixConstant)
}
