/*
Package state owns the process-wide handle every cache call goes
through: the store, the fetch gateway, the planner, and the cache
engine built from them. It replaces the naive "spin until a global flag
flips" pattern with sync.Once plus a closed-on-ready channel, so callers
that ask for the state before Init has finished block on a channel
receive instead of burning CPU in a busy loop.
*/
package state
