package googleauth

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/temirov/driverestore/internal/utils"
)

const (
	// ReportsAuditReadonlyScope grants read access to the Admin audit reports.
	ReportsAuditReadonlyScope = "https://www.googleapis.com/auth/admin.reports.audit.readonly"
	// DriveScope grants full access to Drive files.
	DriveScope = "https://www.googleapis.com/auth/drive"
	// DriveMetadataScope grants access to Drive file metadata.
	DriveMetadataScope = "https://www.googleapis.com/auth/drive.metadata"

	authorizationStateConstant                 = "state-token"
	authorizationPromptTemplateConstant        = "Open the following link in your browser, authorize access, then paste the authorization code:\n%s\nAuthorization code: "
	credentialsFileMissingMessageConstant      = "credentials file path must be provided"
	tokenFileMissingMessageConstant            = "token file path must be provided"
	authorizationCodeMissingMessageConstant    = "authorization code not provided"
	credentialsReadErrorTemplateConstant       = "unable to read credentials file %s: %w"
	credentialsParseErrorTemplateConstant      = "unable to parse credentials file %s: %w"
	tokenReadErrorTemplateConstant             = "unable to read token file %s: %w"
	tokenDecodeErrorTemplateConstant           = "unable to decode token file %s: %w"
	tokenEncodeErrorTemplateConstant           = "unable to encode token: %w"
	tokenWriteErrorTemplateConstant            = "unable to write token file %s: %w"
	authorizationPromptErrorTemplateConstant   = "unable to prompt for authorization: %w"
	authorizationReadErrorTemplateConstant     = "unable to read authorization code: %w"
	authorizationExchangeErrorTemplateConstant = "unable to exchange authorization code: %w"
	tokenSavedMessageConstant                  = "token saved"
	tokenPersistFailedMessageConstant          = "unable to persist refreshed token"
	logFieldCredentialsFileConstant            = "credentials_file"
	logFieldTokenFileConstant                  = "token_file"
	tokenFilePermissionsConstant               = 0o600
)

var (
	errCredentialsFileMissing   = errors.New(credentialsFileMissingMessageConstant)
	errTokenFileMissing         = errors.New(tokenFileMissingMessageConstant)
	errAuthorizationCodeMissing = errors.New(authorizationCodeMissingMessageConstant)
)

// CredentialFiles locates the client secrets and the cached token for one API.
type CredentialFiles struct {
	CredentialsFile string
	TokenFile       string
}

// FileReader reads the contents of a file path.
type FileReader func(path string) ([]byte, error)

// FileWriter writes data to a file path with the given permissions.
type FileWriter func(path string, data []byte, permissions fs.FileMode) error

// Authorizer builds authorized HTTP clients for Google APIs.
type Authorizer struct {
	input      *bufio.Reader
	output     io.Writer
	logger     *zap.Logger
	fileReader FileReader
	fileWriter FileWriter
}

// NewAuthorizer constructs an Authorizer that prompts on output and reads authorization codes from input.
// A *bufio.Reader input is used as is so later prompts on the same console see the remaining lines.
func NewAuthorizer(input io.Reader, output io.Writer, logger *zap.Logger) *Authorizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if output == nil {
		output = io.Discard
	}
	return &Authorizer{
		input:      utils.NewLineReader(input),
		output:     output,
		logger:     logger,
		fileReader: os.ReadFile,
		fileWriter: os.WriteFile,
	}
}

// HTTPClient returns an HTTP client carrying a token for the requested scopes.
func (authorizer *Authorizer) HTTPClient(executionContext context.Context, files CredentialFiles, scopes ...string) (*http.Client, error) {
	tokenSource, tokenSourceError := authorizer.TokenSource(executionContext, files, scopes...)
	if tokenSourceError != nil {
		return nil, tokenSourceError
	}
	return oauth2.NewClient(executionContext, tokenSource), nil
}

// TokenSource returns a token source that persists refreshed tokens back to the token file.
func (authorizer *Authorizer) TokenSource(executionContext context.Context, files CredentialFiles, scopes ...string) (oauth2.TokenSource, error) {
	credentialsFile := strings.TrimSpace(files.CredentialsFile)
	if len(credentialsFile) == 0 {
		return nil, errCredentialsFileMissing
	}
	tokenFile := strings.TrimSpace(files.TokenFile)
	if len(tokenFile) == 0 {
		return nil, errTokenFileMissing
	}

	credentialsContent, readError := authorizer.fileReader(credentialsFile)
	if readError != nil {
		return nil, fmt.Errorf(credentialsReadErrorTemplateConstant, credentialsFile, readError)
	}

	configuration, parseError := google.ConfigFromJSON(credentialsContent, scopes...)
	if parseError != nil {
		return nil, fmt.Errorf(credentialsParseErrorTemplateConstant, credentialsFile, parseError)
	}

	token, loadError := authorizer.loadToken(tokenFile)
	if loadError != nil {
		if !errors.Is(loadError, fs.ErrNotExist) {
			return nil, loadError
		}

		exchangedToken, exchangeError := authorizer.authorize(executionContext, configuration)
		if exchangeError != nil {
			return nil, exchangeError
		}
		if saveError := authorizer.saveToken(tokenFile, exchangedToken); saveError != nil {
			return nil, saveError
		}
		authorizer.logger.Info(
			tokenSavedMessageConstant,
			zap.String(logFieldCredentialsFileConstant, credentialsFile),
			zap.String(logFieldTokenFileConstant, tokenFile),
		)
		token = exchangedToken
	}

	return &persistingTokenSource{
		base:        configuration.TokenSource(executionContext, token),
		authorizer:  authorizer,
		tokenFile:   tokenFile,
		accessToken: token.AccessToken,
	}, nil
}

func (authorizer *Authorizer) authorize(executionContext context.Context, configuration *oauth2.Config) (*oauth2.Token, error) {
	authorizationURL := configuration.AuthCodeURL(authorizationStateConstant, oauth2.AccessTypeOffline)
	if _, promptError := fmt.Fprintf(authorizer.output, authorizationPromptTemplateConstant, authorizationURL); promptError != nil {
		return nil, fmt.Errorf(authorizationPromptErrorTemplateConstant, promptError)
	}

	response, readError := authorizer.input.ReadString('\n')
	if readError != nil && readError != io.EOF {
		return nil, fmt.Errorf(authorizationReadErrorTemplateConstant, readError)
	}

	authorizationCode := strings.TrimSpace(response)
	if len(authorizationCode) == 0 {
		return nil, errAuthorizationCodeMissing
	}

	token, exchangeError := configuration.Exchange(executionContext, authorizationCode)
	if exchangeError != nil {
		return nil, fmt.Errorf(authorizationExchangeErrorTemplateConstant, exchangeError)
	}
	return token, nil
}

func (authorizer *Authorizer) loadToken(tokenFile string) (*oauth2.Token, error) {
	content, readError := authorizer.fileReader(tokenFile)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return nil, readError
		}
		return nil, fmt.Errorf(tokenReadErrorTemplateConstant, tokenFile, readError)
	}

	token := &oauth2.Token{}
	if decodeError := json.Unmarshal(content, token); decodeError != nil {
		return nil, fmt.Errorf(tokenDecodeErrorTemplateConstant, tokenFile, decodeError)
	}
	return token, nil
}

func (authorizer *Authorizer) saveToken(tokenFile string, token *oauth2.Token) error {
	content, encodeError := json.Marshal(token)
	if encodeError != nil {
		return fmt.Errorf(tokenEncodeErrorTemplateConstant, encodeError)
	}
	if writeError := authorizer.fileWriter(tokenFile, content, tokenFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(tokenWriteErrorTemplateConstant, tokenFile, writeError)
	}
	return nil
}

type persistingTokenSource struct {
	base        oauth2.TokenSource
	authorizer  *Authorizer
	tokenFile   string
	mutex       sync.Mutex
	accessToken string
}

// Token returns the current token, persisting it whenever the access token changes.
func (source *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, tokenError := source.base.Token()
	if tokenError != nil {
		return nil, tokenError
	}

	source.mutex.Lock()
	defer source.mutex.Unlock()

	if token.AccessToken == source.accessToken {
		return token, nil
	}

	if saveError := source.authorizer.saveToken(source.tokenFile, token); saveError != nil {
		source.authorizer.logger.Warn(tokenPersistFailedMessageConstant, zap.String(logFieldTokenFileConstant, source.tokenFile), zap.Error(saveError))
		return token, nil
	}
	source.accessToken = token.AccessToken
	return token, nil
}
