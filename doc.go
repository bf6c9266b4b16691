// Package kennel implements a small per-user image hosting service:
// user registration and login with bcrypt-hashed passwords and signed
// bearer tokens, and image upload, retrieval, listing, update and
// deletion with an ownership guard on every resource access.
//
// The package holds the domain types and the two services:
//
//   - AuthService: credential storage and verification, token issuance
//   - ImageService: image lifecycle over pluggable metadata repos
//     (database/sqlite, database/postgres) and file storage (filesystem)
//
// HTTP transport lives in the http subpackage, configuration loading in
// config, and the server CLI in cmd/kennel.
package kennel
