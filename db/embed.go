package db

import "embed"

// Migrations holds the SQL schema for the snapshot journal.
//
//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"
