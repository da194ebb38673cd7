// Package models defines the domain entities shared by the Deezer client, the reconciliation engine and the CLI.
//
//   - [Track] : a track referenced by its numeric Deezer id; identity is the id alone
//   - [Playlist] : a playlist in the user's library; titles are not unique
//   - [User] : the authenticated Deezer profile
//
// The structs carry JSON tags matching the Deezer API so they can be decoded directly from list and single responses.
package models
