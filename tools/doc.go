// Package tools defines the MCP tool surface of the server. Each tool is a
// mechanical pass-through: a schema-validated argument struct, one upstream
// API call, and the raw JSON reply rendered back to the model.
//
// Identity is the interesting part, and it is handled uniformly: every tool
// embeds CustomerHints and routes its API call through the sessions
// orchestrator, which resolves the hints to a token and heals stale cached
// sessions on 401.
package tools
