// Package server provides HTTP routing and middleware for the web front-end.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Middleware
//
// [Logging] emits one structured log line per request with method, path, status, and duration.
//
// [RateLimit] applies a process-wide token bucket to download submissions so a
// single browser cannot queue unbounded jobs; other routes pass through untouched.
//
// # Web Application Integration
//
// The web package (internal/web) builds on this infrastructure with:
//   - A submission form rendering html/template views
//   - SSE streaming for real-time download progress
//   - An in-memory job registry keyed by UUID
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
