// Command eventbuddy runs the event catalog API and its maintenance tasks.
//
// @title EventBuddy API
// @version 1.0
// @description Event catalog: browse, search, favorite and join events; admins manage the catalog.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.
package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	_ "eventbuddy/docs"
)

func main() {
	app := &cli.App{
		Name:  "eventbuddy",
		Usage: "Event catalog API with live updates, favorites and participation.",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			adminCommand("promote-admin", "Grant the admin flag to the user registered under an email.", true),
			adminCommand("demote-admin", "Revoke the admin flag from the user registered under an email.", false),
			importCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}
