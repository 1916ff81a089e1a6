// Package sweeper implements the recurring release check: every unreleased
// tracked movie is re-queried against the release oracle for each waiting
// language, newly released movies are flagged, and one notification is fanned
// out per watching user per confirmed language.
package sweeper
