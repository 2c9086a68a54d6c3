package contentstore

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultAPIBaseURL is the public GitHub API endpoint.
	DefaultAPIBaseURL = "https://api.github.com"
	// DefaultBranch is the branch catalog files are read from and written to.
	DefaultBranch = "main"
	// DefaultReadTimeout bounds a single read call.
	DefaultReadTimeout = 10 * time.Second
	// DefaultWriteTimeout bounds a single write call.
	DefaultWriteTimeout = 30 * time.Second

	authorizationHeaderConstant     = "Authorization"
	bearerPrefixConstant            = "Bearer "
	acceptHeaderConstant            = "Accept"
	acceptHeaderValueConstant       = "application/vnd.github+json"
	userAgentHeaderConstant         = "User-Agent"
	userAgentValueConstant          = "promptctl"
	contentTypeHeaderConstant       = "Content-Type"
	contentTypeValueConstant        = "application/json"
	contentsEndpointTemplate        = "%s/repos/%s/%s/contents/%s"
	latestReleaseEndpointTemplate   = "%s/repos/%s/%s/releases/latest"
	referenceQueryParameterConstant = "ref"
	pathSeparatorConstant           = "/"
	latestReleasePathConstant       = "releases/latest"
	tagVersionPrefixConstant        = "v"
	requestBuildTemplateConstant    = "build %s request for %s: %w"
	payloadEncodeTemplateConstant   = "encode %s payload for %s: %w"
	responseDecodeTemplateConstant  = "decode %s response for %s: %w"
	remoteCallLogMessageConstant    = "remote call"
	pathLogFieldConstant            = "path"
	operationLogFieldConstant       = "operation"
	statusCodeLogFieldConstant      = "status_code"
)

// Target identifies the remote repository and branch.
type Target struct {
	APIBaseURL string
	Owner      string
	Repository string
	Branch     string
}

// Sanitize trims the fields and applies the default endpoint and branch.
func (target Target) Sanitize() Target {
	sanitized := Target{
		APIBaseURL: strings.TrimRight(strings.TrimSpace(target.APIBaseURL), pathSeparatorConstant),
		Owner:      strings.TrimSpace(target.Owner),
		Repository: strings.TrimSpace(target.Repository),
		Branch:     strings.TrimSpace(target.Branch),
	}
	if len(sanitized.APIBaseURL) == 0 {
		sanitized.APIBaseURL = DefaultAPIBaseURL
	}
	if len(sanitized.Branch) == 0 {
		sanitized.Branch = DefaultBranch
	}
	return sanitized
}

// Object is a remote file together with its concurrency token.
type Object struct {
	Path    string
	Content []byte
	Token   string
}

// Store is the contract consumed by the reconciliation engine.
type Store interface {
	RequireCredential() error
	Get(executionContext context.Context, path string) (Object, error)
	Put(executionContext context.Context, path string, content []byte, message string, token string) error
	Delete(executionContext context.Context, path string, message string, token string) error
}

// HTTPDoer performs HTTP requests.
type HTTPDoer interface {
	Do(request *http.Request) (*http.Response, error)
}

// CredentialSource yields a credential on first use. An empty string means none is available.
type CredentialSource func() string

// ClientConfiguration configures a Client. CredentialSource is consulted once,
// on the first call that needs a credential, when Credential is empty.
type ClientConfiguration struct {
	Target           Target
	Credential       string
	CredentialSource CredentialSource
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	HTTPClient       HTTPDoer
	Logger           *zap.Logger
}

// Client talks to the GitHub contents API.
type Client struct {
	target           Target
	credential       string
	credentialSource CredentialSource
	credentialOnce   sync.Once
	readTimeout      time.Duration
	writeTimeout     time.Duration
	httpClient       HTTPDoer
	logger           *zap.Logger
}

type contentsResponse struct {
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type writeRequest struct {
	Message string `json:"message"`
	Content string `json:"content,omitempty"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

type releaseResponse struct {
	TagName string `json:"tag_name"`
}

// NewClient constructs a Client. Calls on a client without a credential fail with ErrCredentialMissing.
func NewClient(configuration ClientConfiguration) *Client {
	readTimeout := configuration.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	writeTimeout := configuration.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	httpClient := configuration.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := configuration.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		target:           configuration.Target.Sanitize(),
		credential:       strings.TrimSpace(configuration.Credential),
		credentialSource: configuration.CredentialSource,
		readTimeout:      readTimeout,
		writeTimeout:     writeTimeout,
		httpClient:       httpClient,
		logger:           logger,
	}
}

// Target returns the repository the client is bound to.
func (client *Client) Target() Target {
	return client.target
}

// RequireCredential reports ErrCredentialMissing when no credential was supplied or resolved.
func (client *Client) RequireCredential() error {
	client.credentialOnce.Do(func() {
		if len(client.credential) == 0 && client.credentialSource != nil {
			client.credential = strings.TrimSpace(client.credentialSource())
		}
	})
	if len(client.credential) == 0 {
		return ErrCredentialMissing
	}
	return nil
}

// Get downloads a file and its concurrency token.
func (client *Client) Get(executionContext context.Context, path string) (Object, error) {
	if credentialError := client.RequireCredential(); credentialError != nil {
		return Object{}, credentialError
	}

	endpoint := client.contentsEndpoint(path) + "?" + url.Values{referenceQueryParameterConstant: {client.target.Branch}}.Encode()
	responseBody, callError := client.call(executionContext, OperationGet, path, http.MethodGet, endpoint, nil, false, client.readTimeout)
	if callError != nil {
		return Object{}, callError
	}

	response := contentsResponse{}
	if decodeError := json.Unmarshal(responseBody, &response); decodeError != nil {
		return Object{}, fmt.Errorf(responseDecodeTemplateConstant, OperationGet, path, decodeError)
	}
	content, contentError := base64.StdEncoding.DecodeString(stripLineBreaks(response.Content))
	if contentError != nil {
		return Object{}, fmt.Errorf(responseDecodeTemplateConstant, OperationGet, path, contentError)
	}

	return Object{Path: path, Content: content, Token: response.SHA}, nil
}

// Put creates the file when token is empty and replaces it conditionally otherwise.
func (client *Client) Put(executionContext context.Context, path string, content []byte, message string, token string) error {
	if credentialError := client.RequireCredential(); credentialError != nil {
		return credentialError
	}
	payload := writeRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  client.target.Branch,
		SHA:     token,
	}
	return client.write(executionContext, OperationPut, http.MethodPut, path, payload)
}

// Delete removes the file identified by token.
func (client *Client) Delete(executionContext context.Context, path string, message string, token string) error {
	if credentialError := client.RequireCredential(); credentialError != nil {
		return credentialError
	}
	payload := writeRequest{Message: message, Branch: client.target.Branch, SHA: token}
	return client.write(executionContext, OperationDelete, http.MethodDelete, path, payload)
}

// LatestReleaseTag returns the most recent published release version without its "v" prefix.
func (client *Client) LatestReleaseTag(executionContext context.Context) (string, error) {
	if credentialError := client.RequireCredential(); credentialError != nil {
		return "", credentialError
	}

	endpoint := fmt.Sprintf(latestReleaseEndpointTemplate, client.target.APIBaseURL, url.PathEscape(client.target.Owner), url.PathEscape(client.target.Repository))
	responseBody, callError := client.call(executionContext, OperationLatestRelease, latestReleasePathConstant, http.MethodGet, endpoint, nil, false, client.readTimeout)
	if callError != nil {
		return "", callError
	}

	response := releaseResponse{}
	if decodeError := json.Unmarshal(responseBody, &response); decodeError != nil {
		return "", fmt.Errorf(responseDecodeTemplateConstant, OperationLatestRelease, latestReleasePathConstant, decodeError)
	}
	return strings.TrimPrefix(response.TagName, tagVersionPrefixConstant), nil
}

func (client *Client) write(executionContext context.Context, operation OperationName, method string, path string, payload writeRequest) error {
	encodedPayload, encodeError := json.Marshal(payload)
	if encodeError != nil {
		return fmt.Errorf(payloadEncodeTemplateConstant, operation, path, encodeError)
	}
	_, callError := client.call(executionContext, operation, path, method, client.contentsEndpoint(path), encodedPayload, len(payload.SHA) > 0, client.writeTimeout)
	return callError
}

func (client *Client) call(executionContext context.Context, operation OperationName, path string, method string, endpoint string, payload []byte, conditional bool, timeout time.Duration) ([]byte, error) {
	callContext, cancel := context.WithTimeout(executionContext, timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	request, requestError := http.NewRequestWithContext(callContext, method, endpoint, body)
	if requestError != nil {
		return nil, fmt.Errorf(requestBuildTemplateConstant, operation, path, requestError)
	}
	request.Header.Set(authorizationHeaderConstant, bearerPrefixConstant+client.credential)
	request.Header.Set(acceptHeaderConstant, acceptHeaderValueConstant)
	request.Header.Set(userAgentHeaderConstant, userAgentValueConstant)
	if payload != nil {
		request.Header.Set(contentTypeHeaderConstant, contentTypeValueConstant)
	}

	response, transportError := client.httpClient.Do(request)
	if transportError != nil {
		client.logger.Warn(remoteCallLogMessageConstant, zap.String(operationLogFieldConstant, string(operation)), zap.String(pathLogFieldConstant, path), zap.Error(transportError))
		return nil, TransportError{Operation: operation, Path: path, Cause: transportError}
	}
	defer response.Body.Close()

	responseBody, readError := io.ReadAll(response.Body)
	if readError != nil {
		return nil, TransportError{Operation: operation, Path: path, Cause: readError}
	}

	client.logger.Debug(remoteCallLogMessageConstant, zap.String(operationLogFieldConstant, string(operation)), zap.String(pathLogFieldConstant, path), zap.Int(statusCodeLogFieldConstant, response.StatusCode))

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return nil, RemoteFailureError{
			Operation:   operation,
			Path:        path,
			StatusCode:  response.StatusCode,
			Body:        truncateBody(string(responseBody)),
			Conditional: conditional,
		}
	}
	return responseBody, nil
}

func (client *Client) contentsEndpoint(path string) string {
	segments := strings.Split(strings.Trim(path, pathSeparatorConstant), pathSeparatorConstant)
	for segmentIndex := range segments {
		segments[segmentIndex] = url.PathEscape(segments[segmentIndex])
	}
	return fmt.Sprintf(contentsEndpointTemplate, client.target.APIBaseURL, url.PathEscape(client.target.Owner), url.PathEscape(client.target.Repository), strings.Join(segments, pathSeparatorConstant))
}

func stripLineBreaks(encoded string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(encoded)
}
