// Package googleauth acquires OAuth2 credentials for the Google Admin Reports
// and Drive APIs.
//
// Authorizer loads installed-application client secrets, reuses cached tokens
// from disk, and falls back to a console authorization-code exchange when no
// token is cached. Refreshed tokens are written back to the token file.
package googleauth
