// Package sessions implements customer session resolution and caching for
// tool calls against the Recharge API.
//
// Every tool invocation must run as some authenticated identity: an
// explicitly supplied session token, a customer identified by id or email,
// or a statically configured default token. The Store caches minted session
// tokens per customer with a TTL, the Resolver turns per-request hints into
// a concrete credential, and the Orchestrator wraps the actual API call
// with a bounded invalidate-and-retry loop so that a server-side 401 heals
// the cache instead of poisoning it.
//
// The central invariant lives in the Resolver: once the process has cached
// any customer-scoped session, a request that names no identity is refused
// rather than silently served with the default token, because falling back
// could hand one customer's authenticated context to an unrelated caller.
package sessions
