/*
Package store is the persistent backing for the cache: a single SQLite
table keyed by (id, data_type), looked up and upserted in bulk via
SQLite's json_each/json_extract table-valued functions so that a request
for N keys costs one round trip and one cached query plan instead of N
(or a dynamically-sized IN clause that defeats statement caching).

The schema is embedded and applied with a single CREATE TABLE IF NOT
EXISTS migration; there is deliberately no migration framework since the
schema has one table and one shape.
*/
package store
