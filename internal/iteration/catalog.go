package iteration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/miloslab/labops/internal/execshell"
)

const (
	repositoryListURLTemplateConstant = "https://api.github.com/users/%s/repos?sort=updated&per_page=100"
	curlSilentFlagConstant            = "-s"
	catalogExecutorNotConfiguredMsg   = "catalog client curl executor not configured"
	catalogFetchFailedLogMessage      = "repository catalog fetch failed"
	catalogParseFailedLogMessage      = "repository catalog parse failed"
	catalogUserLogFieldConstant       = "github_user"
)

// ErrCurlExecutorNotConfigured is reported when a catalog client is built without curl.
var ErrCurlExecutorNotConfigured = errors.New(catalogExecutorNotConfiguredMsg)

// RepositoryRecord describes one repository returned by the GitHub listing.
type RepositoryRecord struct {
	Name        string `json:"name"`
	CloneURL    string `json:"clone_url"`
	Description string `json:"description"`
}

// CatalogClient lists a user's repositories through the GitHub REST API.
type CatalogClient struct {
	curlExecutor CurlExecutor
	logger       *zap.Logger
}

// NewCatalogClient constructs a CatalogClient. A nil logger downgrades to a
// no-op logger.
func NewCatalogClient(curlExecutor CurlExecutor, logger *zap.Logger) (*CatalogClient, error) {
	if curlExecutor == nil {
		return nil, ErrCurlExecutorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogClient{curlExecutor: curlExecutor, logger: logger}, nil
}

// FetchRepositories lists the user's repositories ordered by last update.
// Transport failures and unparseable responses degrade to an empty catalog.
func (client *CatalogClient) FetchRepositories(executionContext context.Context, userName string) []RepositoryRecord {
	listingURL := fmt.Sprintf(repositoryListURLTemplateConstant, userName)
	commandDetails := execshell.CommandDetails{Arguments: []string{curlSilentFlagConstant, listingURL}}

	executionResult, executionError := client.curlExecutor.ExecuteCurl(executionContext, commandDetails)
	if executionError != nil {
		client.logger.Warn(catalogFetchFailedLogMessage, zap.String(catalogUserLogFieldConstant, userName), zap.Error(executionError))
		return nil
	}

	var repositories []RepositoryRecord
	if unmarshalError := json.Unmarshal([]byte(executionResult.StandardOutput), &repositories); unmarshalError != nil {
		client.logger.Warn(catalogParseFailedLogMessage, zap.String(catalogUserLogFieldConstant, userName), zap.Error(unmarshalError))
		return nil
	}
	return repositories
}
