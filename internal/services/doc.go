// Package services implements the Deezer side of dzshuffled.
//
// # API Client
//
// [APIService] is a thin, retry free HTTP wrapper. Every request carries the current access_token and a page size limit,
// and waits on a token bucket limiter sized for Deezer's quota (50 requests every 5 seconds).
//
// Responses are interpreted according to a [Mode]:
//   - [Single] : the decoded object is returned as is
//   - [List] : the {data, next} envelope is unwrapped and every next page is followed
//
// Boolean bodies, returned by Deezer for most mutations, bypass mode handling.
// An {"error": {...}} envelope becomes a [*RequestError].
//
// # Session and Authorization
//
// [Session] holds the token, application credentials and the cached user. It is created once by the caller and shared by
// reference; [AuthService] is the only writer.
//
// [AuthService] validates tokens against /user/me and performs the authorization code flow through an [Authorizer]
// (see internal/server), exchanging the code at connect.deezer.com with [oauth2].
//
// # Library
//
// [DeezerService] implements [Library]. It memoizes the user's playlists until a forced refresh and splits bulk track
// additions and deletions into chunks that fit Deezer's request limits.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrAPIRequest] : Deezer reported an error, see [RequestError]
//   - [shared.ErrUnexpectedResponse] : a list response without a data array
//   - [shared.ErrClientMisuse] : unknown [Mode]
//   - [shared.ErrAuthFailed] : missing credentials, failed code exchange, unrecognized token check
package services
