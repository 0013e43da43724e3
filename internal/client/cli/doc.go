// Package cli provides the interactive admin client of the site.
//
// It wires configuration, the local state file, the HTTP API client and a
// REPL. A staff member logs in, picks a collection with "use", and then
// lists, creates, edits, deletes, reorders and uploads media for its
// records. Drafts live on the server, so an interrupted CLI can pick up an
// open draft with "show".
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
