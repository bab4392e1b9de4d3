// Package app wires readinglist components from configuration.
//
// NewApplication configures logging, loads and validates the configuration
// directory and builds the client pipeline held in Services: the token
// issuer, the cookie jar and session store, the session Manager, the
// request Dispatcher and the Books client. Which authentication strategy
// the dispatcher uses is decided here, once, from the machine credentials.
//
// NewBookServer does the same for the server side: it picks the book
// repository (in memory or PostgreSQL with migrations applied), mounts
// the REST API and /metrics, and returns a Server ready to run.
package app
