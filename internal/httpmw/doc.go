// Package httpmw provides the request interception pipeline for the API
// server.
//
// Middleware is composed in a specific order in httpserver.NewHandler:
// CORS, request-context binding, the timing/logging interceptor, rate
// limiting, metrics, and the chi router. The interceptor is the single
// error boundary for a request: it stamps diagnostic headers, recovers
// panics into a generic 500 envelope, and emits exactly one log record
// per request after the response status is final.
//
// The advisory user id extracted here is telemetry only and must never
// be treated as an authenticated identity.
package httpmw
