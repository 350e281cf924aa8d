package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"eventbuddy/internal/services"
	"eventbuddy/migrations"
)

// withApp loads the configuration, builds the app and runs fn against it.
func withApp(c *cli.Context, fn func(ctx context.Context, a *app) error) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(c.Context, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(c.Context, a)
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending database migrations.",
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, a *app) error {
				if a.db == nil {
					return fmt.Errorf("migrate requires postgres storage, got %q", a.cfg.Storage)
				}
				applied, err := migrations.Apply(ctx, a.db, a.logger)
				if err != nil {
					return err
				}
				if len(applied) == 0 {
					fmt.Fprintln(c.App.Writer, "Database is up to date.")
					return nil
				}
				for _, v := range applied {
					fmt.Fprintf(c.App.Writer, "Applied %s\n", v)
				}
				return nil
			})
		},
	}
}

func adminCommand(name, usage string, grant bool) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<email>",
		Action: func(c *cli.Context) error {
			email := c.Args().First()
			if email == "" {
				return cli.Exit("an email is required", 2)
			}
			return withApp(c, func(ctx context.Context, a *app) error {
				profile, err := a.profileService.SetAdmin(ctx, email, grant)
				if err != nil {
					return fmt.Errorf("failed to update %s: %w", email, err)
				}
				fmt.Fprintf(c.App.Writer, "%s (%s) isAdmin=%t\n", profile.Email, profile.UID, profile.IsAdmin)
				return nil
			})
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import-events",
		Usage:     "Import events from a JSON export (an array of documents or an object keyed by id).",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "profiles",
				Usage: "Profile export whose favorites and admin flags are copied onto registered users, after the events.",
			},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("a file is required", 2)
			}
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			defer f.Close()

			var profilesFile *os.File
			if p := c.String("profiles"); p != "" {
				if profilesFile, err = os.Open(p); err != nil {
					return fmt.Errorf("failed to open %s: %w", p, err)
				}
				defer profilesFile.Close()
			}

			return withApp(c, func(ctx context.Context, a *app) error {
				result, err := services.NewEventImporter(a.events, a.cfg.ContextTimeout, a.logger).Import(ctx, f)
				printImport(c, "events", result)
				if err != nil || profilesFile == nil {
					return err
				}
				profiles, err := services.NewProfileImporter(a.profiles, a.cfg.ContextTimeout, a.logger).Import(ctx, profilesFile, result.IDs)
				printImport(c, "profiles", profiles)
				return err
			})
		},
	}
}

func printImport(c *cli.Context, kind string, result services.ImportResult) {
	for _, skip := range result.Skipped {
		fmt.Fprintf(c.App.ErrWriter, "skipped %s: %s\n", skip.Key, skip.Reason)
	}
	fmt.Fprintf(c.App.Writer, "Imported %d %s, skipped %d.\n", len(result.Imported), kind, len(result.Skipped))
}
