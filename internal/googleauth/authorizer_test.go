package googleauth_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/temirov/driverestore/internal/googleauth"
	"github.com/temirov/driverestore/internal/ui"
)

const (
	testCredentialsFileNameConstant    = "drive_credentials.json"
	testTokenFileNameConstant          = "token-drive.json"
	testCredentialsTemplateConstant    = `{"installed":{"client_id":"client-id","client_secret":"client-secret","redirect_uris":["http://localhost"],"auth_uri":"%s/auth","token_uri":"%s/token"}}`
	testCachedAccessTokenConstant      = "cached-access-token"
	testExchangedAccessTokenConstant   = "exchanged-access-token"
	testAuthorizationCodeConstant      = "authorization-code"
	testAuthorizationHeaderKeyConstant = "Authorization"
	testBearerTemplateConstant         = "Bearer %s"
)

func TestAuthorizerUsesCachedToken(testInstance *testing.T) {
	tokenServer := newTokenServer(testInstance, nil)
	temporaryDirectory := testInstance.TempDir()
	files := writeCredentialFiles(testInstance, temporaryDirectory, tokenServer.URL)

	cachedToken := &oauth2.Token{
		AccessToken:  testCachedAccessTokenConstant,
		TokenType:    "Bearer",
		RefreshToken: "refresh-token",
		Expiry:       time.Now().Add(time.Hour),
	}
	tokenContent, encodeError := json.Marshal(cachedToken)
	require.NoError(testInstance, encodeError)
	require.NoError(testInstance, os.WriteFile(files.TokenFile, tokenContent, 0o600))

	var observedAuthorization string
	apiServer := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		observedAuthorization = request.Header.Get(testAuthorizationHeaderKeyConstant)
		responseWriter.WriteHeader(http.StatusNoContent)
	}))
	testInstance.Cleanup(apiServer.Close)

	outputBuffer := &bytes.Buffer{}
	authorizer := googleauth.NewAuthorizer(strings.NewReader(""), outputBuffer, zap.NewNop())

	httpClient, clientError := authorizer.HTTPClient(context.Background(), files, googleauth.DriveScope)
	require.NoError(testInstance, clientError)

	response, requestError := httpClient.Get(apiServer.URL)
	require.NoError(testInstance, requestError)
	require.NoError(testInstance, response.Body.Close())

	require.Equal(testInstance, fmt.Sprintf(testBearerTemplateConstant, testCachedAccessTokenConstant), observedAuthorization)
	require.Empty(testInstance, outputBuffer.String())
}

func TestAuthorizerExchangesAuthorizationCodeWhenTokenMissing(testInstance *testing.T) {
	var receivedCode string
	tokenServer := newTokenServer(testInstance, &receivedCode)
	temporaryDirectory := testInstance.TempDir()
	files := writeCredentialFiles(testInstance, temporaryDirectory, tokenServer.URL)

	outputBuffer := &bytes.Buffer{}
	authorizer := googleauth.NewAuthorizer(strings.NewReader(testAuthorizationCodeConstant+"\n"), outputBuffer, zap.NewNop())

	tokenSource, sourceError := authorizer.TokenSource(context.Background(), files, googleauth.ReportsAuditReadonlyScope)
	require.NoError(testInstance, sourceError)

	token, tokenError := tokenSource.Token()
	require.NoError(testInstance, tokenError)
	require.Equal(testInstance, testExchangedAccessTokenConstant, token.AccessToken)
	require.Equal(testInstance, testAuthorizationCodeConstant, receivedCode)
	require.Contains(testInstance, outputBuffer.String(), "Authorization code: ")

	savedContent, readError := os.ReadFile(files.TokenFile)
	require.NoError(testInstance, readError)

	savedToken := &oauth2.Token{}
	require.NoError(testInstance, json.Unmarshal(savedContent, savedToken))
	require.Equal(testInstance, testExchangedAccessTokenConstant, savedToken.AccessToken)
}

func TestAuthorizerLeavesRemainingInputForConfirmationPrompt(testInstance *testing.T) {
	var receivedCode string
	tokenServer := newTokenServer(testInstance, &receivedCode)
	temporaryDirectory := testInstance.TempDir()
	files := writeCredentialFiles(testInstance, temporaryDirectory, tokenServer.URL)

	sharedInput := bufio.NewReader(strings.NewReader(testAuthorizationCodeConstant + "\ny\n"))
	authorizer := googleauth.NewAuthorizer(sharedInput, &bytes.Buffer{}, zap.NewNop())

	tokenSource, sourceError := authorizer.TokenSource(context.Background(), files, googleauth.DriveScope)
	require.NoError(testInstance, sourceError)
	_, tokenError := tokenSource.Token()
	require.NoError(testInstance, tokenError)
	require.Equal(testInstance, testAuthorizationCodeConstant, receivedCode)

	prompter := ui.NewIOConfirmationPrompter(sharedInput, &bytes.Buffer{})
	confirmed, confirmError := prompter.Confirm("Proceed? ")
	require.NoError(testInstance, confirmError)
	require.True(testInstance, confirmed)
}

func TestAuthorizerRejectsInvalidInputs(testInstance *testing.T) {
	tokenServer := newTokenServer(testInstance, nil)
	temporaryDirectory := testInstance.TempDir()
	files := writeCredentialFiles(testInstance, temporaryDirectory, tokenServer.URL)

	testCases := []struct {
		name          string
		files         googleauth.CredentialFiles
		input         string
		expectedError string
	}{
		{
			name:          "missing_credentials_path",
			files:         googleauth.CredentialFiles{TokenFile: files.TokenFile},
			expectedError: "credentials file path must be provided",
		},
		{
			name:          "missing_token_path",
			files:         googleauth.CredentialFiles{CredentialsFile: files.CredentialsFile},
			expectedError: "token file path must be provided",
		},
		{
			name:          "credentials_file_absent",
			files:         googleauth.CredentialFiles{CredentialsFile: filepath.Join(temporaryDirectory, "absent.json"), TokenFile: files.TokenFile},
			expectedError: "unable to read credentials file",
		},
		{
			name:          "empty_authorization_code",
			files:         files,
			input:         "\n",
			expectedError: "authorization code not provided",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			authorizer := googleauth.NewAuthorizer(strings.NewReader(testCase.input), &bytes.Buffer{}, nil)
			_, sourceError := authorizer.TokenSource(context.Background(), testCase.files, googleauth.DriveScope)
			require.Error(testInstance, sourceError)
			require.Contains(testInstance, sourceError.Error(), testCase.expectedError)
		})
	}
}

func newTokenServer(testInstance *testing.T, receivedCode *string) *httptest.Server {
	testInstance.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		if parseError := request.ParseForm(); parseError != nil {
			responseWriter.WriteHeader(http.StatusBadRequest)
			return
		}
		if receivedCode != nil {
			*receivedCode = request.PostForm.Get("code")
		}
		responseWriter.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(responseWriter, `{"access_token":"%s","token_type":"Bearer","refresh_token":"refresh-token","expires_in":3600}`, testExchangedAccessTokenConstant)
	}))
	testInstance.Cleanup(server.Close)
	return server
}

func writeCredentialFiles(testInstance *testing.T, directory string, serverURL string) googleauth.CredentialFiles {
	testInstance.Helper()
	credentialsPath := filepath.Join(directory, testCredentialsFileNameConstant)
	credentialsContent := fmt.Sprintf(testCredentialsTemplateConstant, serverURL, serverURL)
	require.NoError(testInstance, os.WriteFile(credentialsPath, []byte(credentialsContent), 0o600))
	return googleauth.CredentialFiles{
		CredentialsFile: credentialsPath,
		TokenFile:       filepath.Join(directory, testTokenFileNameConstant),
	}
}
