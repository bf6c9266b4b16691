// Package http provides the HTTP API for the kennel dog image service.
//
// This package exposes a JSON REST API with token-based authentication:
// registration and login under /api/auth, and per-user image upload,
// retrieval, listing, update and deletion under /api/dogs.
//
// # Features
//
//   - Bearer token authentication via the TokenVerifier interface
//   - Multipart image upload with a configurable size cap
//   - Paginated listing of the caller's own images
//   - Token-bucket rate limiting on the auth routes
//   - JSON error responses with stable error codes
//   - Configurable CORS support
//
// # Authentication
//
// Every /api/dogs route runs behind the Auth middleware. A request without
// a bearer token is rejected with 401; a token that fails verification is
// rejected with 403. Handlers read the verified identity from the request
// context with IdentityFromContext.
//
// # Error Mapping
//
// Service errors are translated once, in HandleError: unknown records map
// to 404, ownership violations to 403, bad input to 400, duplicate
// usernames to 409 and anything unrecognized to 500. Handlers only add
// route-specific cases, such as login mapping an unknown user to 401.
package http
