package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/nftmesh/nftmesh-go/internal/cli/connection"
	"github.com/nftmesh/nftmesh-go/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "nftmesh-cli",
		Usage:   "NFTMesh command-line management tool",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			TokenCommand(),
			OperatorCommand(),
			EventsCommand(),
			BackupCommand(),
			SystemCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "NFTMesh server address (e.g., localhost:5480)",
			EnvVars: []string{"NFTMESH_SERVER"},
			Value:   "localhost:5480",
		},
		&cli.StringFlag{
			Name:    "caller",
			Aliases: []string{"c"},
			Usage:   "Account to act as for mutating operations",
			EnvVars: []string{"NFTMESH_CALLER"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "Request timeout",
			Value:   30 * time.Second,
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server string
	Caller string

	Output string // table, json, yaml
	Wide   bool

	Timeout time.Duration
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server:  c.String("server"),
		Caller:  c.String("caller"),
		Output:  c.String("output"),
		Wide:    c.Bool("wide"),
		Timeout: c.Duration("timeout"),
	}
}

// EnsureConnected returns an HTTP client built from the global flags.
func EnsureConnected(c *cli.Context) (*connection.Client, error) {
	flags := ParseGlobalFlags(c)
	return connection.NewClient(flags.Server, flags.Caller, flags.Timeout), nil
}

// requestContext returns a context bounded by the global timeout flag.
func requestContext(c *cli.Context) (context.Context, context.CancelFunc) {
	timeout := c.Duration("timeout")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
