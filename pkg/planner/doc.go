/*
Package planner knows how to turn a batch of missing or expired cache
keys into live data: one file per kind family, each responsible for
building the right request against the mod registry or meta service,
decoding the response, and producing the CachedEntry rows the store
should hold — including derived entries for related kinds a single
fetch happens to resolve as a side effect (an Organization fetch also
resolves its member Users and parent Team, for instance).

Planner methods never touch the store directly; the cache engine owns
reading stale data, deciding what's missing, and writing fetch results
back. This keeps the planner's Fetch methods pure with respect to storage and easy to
test with httptest.
*/
package planner
