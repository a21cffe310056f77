// Package appfs embeds the files the binaries ship with: SQL migrations, email templates and static assets.
package appfs

import "embed"

//go:embed migrations/*.sql templates/email/* assets/*
var FS embed.FS
