// Package storage provides the durable key/value stores the quote list is
// persisted in, and the repository that encodes quotes onto them.
//
// Three drivers are available:
//   - "file": one JSON object on disk, replaced atomically on every write.
//     The file can be watched for edits made by other processes.
//   - "sqlite": a kv table in a modernc.org/sqlite database.
//   - "memory": process-local, for tests and throwaway runs.
//
// The Repository owns three keys: quotes (JSON array), selectedCategory
// (plain string) and idCounter (decimal integer). Values that fail to parse
// recover to their defaults instead of failing startup.
package storage
