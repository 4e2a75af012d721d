/*
Package log provides structured logging for the cache library using
zerolog. It wraps a package-level logger with component-scoped child
loggers (WithComponent, WithKind) so that every line emitted by the cache
engine, fetch gateway, planner, and store carries enough context to filter
by subsystem or cache kind.

Initialize once via log.Init before any other package logs; until Init is
called, Logger is the zero-value zerolog.Logger (writes nowhere).
*/
package log
