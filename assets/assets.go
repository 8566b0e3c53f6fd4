// Package assets embeds files the binaries ship with.
package assets

import "embed"

// Migrations holds the golang-migrate SQL files under migrations/.
//
//go:embed migrations/*.sql
var Migrations embed.FS
