// Package observability records what happens in a swarm session as
// structured JSON Lines events, next to the action log, and derives activity
// metrics on demand from that event stream.
package observability
