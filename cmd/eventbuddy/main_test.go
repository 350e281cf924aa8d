package main

import (
	"bytes"
	"flag"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"eventbuddy/internal/services"
)

func testApp(out, errOut *bytes.Buffer) *cli.App {
	return &cli.App{
		Name:           "eventbuddy",
		Writer:         out,
		ErrWriter:      errOut,
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			adminCommand("promote-admin", "", true),
			importCommand(),
		},
	}
}

func TestCommands_RequireArgument(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"promote without email", []string{"eventbuddy", "promote-admin"}, "an email is required"},
		{"import without file", []string{"eventbuddy", "import-events"}, "a file is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			err := testApp(&out, &errOut).Run(tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestImportCommand_MissingFile(t *testing.T) {
	var out, errOut bytes.Buffer
	err := testApp(&out, &errOut).Run([]string{"eventbuddy", "import-events", "/nonexistent/events.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")
}

func TestImportCommand_MissingProfilesFile(t *testing.T) {
	var out, errOut bytes.Buffer
	events := t.TempDir() + "/events.json"
	require.NoError(t, os.WriteFile(events, []byte("[]"), 0o600))

	err := testApp(&out, &errOut).Run([]string{"eventbuddy", "import-events", "--profiles", "/nonexistent/profiles.json", events})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/nonexistent/profiles.json")
}

func TestPrintImport(t *testing.T) {
	var out, errOut bytes.Buffer
	app := testApp(&out, &errOut)
	c := cli.NewContext(app, flag.NewFlagSet("test", flag.ContinueOnError), nil)

	printImport(c, "events", services.ImportResult{
		Imported: []string{"a", "b"},
		Skipped:  []services.ImportSkip{{Key: "c", Reason: "missing title"}},
	})

	assert.Equal(t, "Imported 2 events, skipped 1.\n", out.String())
	assert.Equal(t, "skipped c: missing title\n", errOut.String())
}
