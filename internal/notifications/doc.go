// Package notifications delivers release notices to users through the chat
// transport. When no bot token is configured a noop implementation is used,
// which keeps the sweep runnable in isolation.
package notifications
