// Package client talks to the site server's HTTP API on behalf of the admin
// CLI.
//
// # Error Handling
//
// Transport failures wrap ErrUnavailable. Non-2xx answers are returned as
// *APIError; a 401 also matches ErrUnauthorized with errors.Is.
//
// A Client is safe for concurrent use. Every call honors the context and
// the configured request timeout.
package client
