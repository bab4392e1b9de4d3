// Package session decides whether the current user may call the reading-list API.
//
// Three sources are reconciled into an AuthState: the one-time `userinfo`
// cookie the managed-auth gateway sets after login, the identity persisted
// from an earlier run, and the presence of machine credentials. The Manager
// resolves that state once per process and owns it afterwards.
//
// Session values live in a Store (FileStore between CLI runs, MemoryStore when no
// state directory is configured), and gateway cookies live in a Jar persisted
// to the same state directory.
package session
