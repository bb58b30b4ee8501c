// Package client talks to the blog REST API.
//
// HTTPClient implements Client over net/http. Before each request it asks
// its TokenSource for the current bearer credential, so the credential is
// always read fresh from local storage rather than captured at start-up,
// and it tags the request with an X-Request-ID.
//
// # Error Handling
//
// Non-2xx responses become *APIError, which carries the status and the
// server's "error"/"message" text and unwraps to a sentinel:
//
//	401      -> ErrUnauthorized
//	403      -> ErrForbidden
//	404      -> ErrNotFound
//	5xx      -> ErrServer
//
// Transport failures wrap ErrTimeout or ErrUnavailable. Use errors.Is, or
// the StatusOf / MessageOf / IsUnauthorized helpers.
//
// # Decoding
//
// The API is not consistent about envelopes, so list endpoints accept a bare
// array or an object wrapping it, and object endpoints accept a bare
// resource or one wrapped under "data" or the resource name.
package client
