// Package bookservice implements the reading-list REST API.
//
// Books live behind a Repository: MemoryRepository for local runs and
// tests, PostgresRepository (pgx through database/sql, schema managed
// by goose) when a database URL is configured. Handler mounts the CRUD
// routes under /reading-list/books on a chi router and Server runs it
// with graceful shutdown.
package bookservice
