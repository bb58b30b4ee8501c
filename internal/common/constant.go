// Package common contains shared constants and sentinel errors used across
// the hhblog client packages.
package common

const (
	// AuthorizationHeader carries the bearer credential on outbound requests.
	AuthorizationHeader = "Authorization"
	// BearerScheme prefixes the credential inside AuthorizationHeader.
	BearerScheme = "Bearer"
	// RequestIDHeader tags each request so client and server logs can be joined.
	RequestIDHeader = "X-Request-ID"

	RoleAdmin = "admin"
)
