// Package dispatch sends reading-list API requests and decides what happens
// when they fail.
//
// The AuthStrategy is fixed at startup. Bearer attaches a client-credentials
// token and returns every failure to the caller untouched. Cookie relies on
// the gateway session cookies in the HTTP client's jar and recovers from
// expiry:
//
//	401 -> POST /auth/refresh -> retry once -> (401 again) redirect to login
//	403 -> clear identity -> redirect to login unless already on an auth page
//
// Navigation is returned as a value in Outcome; a Navigator applies it.
package dispatch
