// Package auth provides optional bearer-token authentication for the HTTP
// API: an HS256 JWT validator, request-context claims propagation and a gin
// middleware.
//
//	auth:
//	  enabled: true
//	  secret: "change-me"
//	  issuer: "scribe"
package auth
