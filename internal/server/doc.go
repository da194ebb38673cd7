// Package server provides the short lived HTTP listener that completes Deezer's authorization code flow.
//
// # Router Infrastructure
//
// [BasicRouter] registers [Handler] routes on [http.ServeMux] behind [Middleware] such as [Logging].
// Anything it does not know answers 404.
//
// # Callback Handler
//
// [CodeHandler] serves the redirect path registered with the Deezer application and reports the first code it sees
// through a channel. It only processes one redirect.
//
// # Code Flow
//
// [CodeFlow] ties the pieces together for [services.AuthService]: it binds localhost on the configured port, opens the
// consent page in a browser, waits for the redirect (optionally bounded by a timeout) and shuts the listener down.
package server
