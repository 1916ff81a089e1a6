// Package logging constructs slog loggers for the filmwatch daemon and CLI
// and provides shared attribute helpers plus standardized field keys.
package logging
