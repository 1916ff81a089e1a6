// Package metadata talks to the external movie metadata API. It covers the
// two capabilities the core needs from the provider: free-text title search
// and release-status lookup, each bound to a single locale. One client is
// built per configured language at startup.
package metadata
