// Package bot drives the conversational flow: free text resolves to movie
// candidates, a selected candidate passes the add-flow checks, and commits
// land in the registries. The Telegram transport is kept to a thin long-poll
// client; all conversation decisions live in the handler so they can be
// exercised without the network.
package bot
