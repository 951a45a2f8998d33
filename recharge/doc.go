// Package recharge is a thin client for the Recharge subscription commerce
// API. It carries no identity of its own: every call takes the bearer token
// to run as, and the AdminGateway binds the privileged credential used for
// customer lookup and session minting.
//
// Responses are passed through as raw JSON; this adapter does not model the
// upstream resources beyond the few fields it needs. HTTP failures are
// mapped onto the sessions error taxonomy so the orchestration layer can
// make retry decisions without inspecting status codes.
package recharge
