// Package client contains the client-side building blocks for Balance Buddy.
//
// # Overview
//
// The package provides:
//  1. The remote API contract (see the Backend interface): session
//     management, profile, meters, tasks, the customization catalog and its
//     purchase/equip procedures, journal entries, and realtime watches.
//  2. A concrete implementation on the hosted Supabase project (see
//     SupabaseBackend). Session refresh and error mapping live in package
//     supabase; this layer only speaks tables, columns and functions.
//  3. Local cache bootstrap (InitDatabase, RunMigrations, NewRepositories),
//     wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Remote failures unwrap to the sentinel errors of package common
// (ErrNotFound, ErrUnauthorized, ErrUnavailable, ErrInsufficientCoins, ...),
// so callers match them with errors.Is.
package client
