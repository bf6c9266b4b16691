// Package config provides configuration loading and validation for kennel.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (KENNEL_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with KENNEL_ prefix:
//   - server.port → KENNEL_SERVER_PORT
//   - database.type → KENNEL_DATABASE_TYPE
//   - auth.secret → KENNEL_AUTH_SECRET
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: port and max_upload_size
//   - Service: cleanup_timeout for background operations
//   - Database: type, DSN, and table names
//   - Storage: upload directory path
//   - Auth: token signing secret, token TTL, and auth route rate limiting
//   - CORS: cross-origin resource sharing settings
//   - Log: logging level and format
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Auth secret is required
//   - Log level must be debug, info, warn, or error
//   - Log format must be text or json
package config
