// Package progression holds the learner progression rules: the level table,
// quiz outcome application and progress reset.
//
// Every function is pure. Records are passed and returned by value and the
// slices inside them are cloned before modification, so a caller's record is
// never changed behind its back. Persisting the result is the caller's job.
package progression
