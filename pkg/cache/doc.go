/*
Package cache implements the stale-while-revalidate engine: given a kind
and a set of keys, it decides what the store already has, what's expired,
and what's missing, fetches only what's needed through a planner.Planner,
writes the result back, and — for the two stale-while-revalidate
behaviors — kicks off a detached background refresh for anything it
served stale so the next request sees fresh data without having paid for
it.

Engine never blocks a caller on a background refresh: GetMany returns as
soon as it has an answer for every key, synchronous fetches aside. Wait
exists purely so tests can deterministically observe a background
refresh's effect on the store before asserting on it.
*/
package cache
