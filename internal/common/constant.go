// Package common contains shared constants and sentinel errors used across
// supportdesk components.
package common

// AuthorizationHeaderName is the HTTP header carrying the access token on
// outbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme prefixes the access token inside the Authorization header.
const BearerScheme = "Bearer"

// RequestIDHeaderName correlates a client call with server logs.
const RequestIDHeaderName = "X-Request-ID"
