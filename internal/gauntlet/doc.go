// Package gauntlet evaluates an extracted acrostic poem against the twelve
// challenge constraints.
//
// Every constraint runs on every call; none short-circuits another. Failing a
// blocking constraint appends to Result.Failures, failing an advisory one
// (semantic categories, theme) appends to Result.Warnings. Diagnostics for
// all constraints are recorded in Result.Details whether they pass or not, so
// reviewers can see why a borderline line was counted the way it was.
//
// An Engine is immutable once built. Share one across goroutines.
package gauntlet
