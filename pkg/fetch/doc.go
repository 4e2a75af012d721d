/*
Package fetch is the cache's only door to the network: a Gateway that
bounds concurrent outbound requests with a weighted semaphore, decodes
JSON responses, and classifies failures so callers can tell "the network
is down" (retryable, and the thing that triggers offline handling) apart
from "the server said no" or "the response didn't parse" (neither of
which a retry fixes).
*/
package fetch
