// texopt applies one set of texture import settings to every texture in a
// project and can undo what it changed.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("texopt")

const usageStr = `texopt applies texture import settings to every texture in a project.

Usage:

    texopt apply   [flags]          rewrite texture .meta files
    texopt restore [flags] [path…]  put back the original .meta files
    texopt status  [flags]          list what texopt changed

Run "texopt <command> -h" for the flags of a command.

Set TEXOPT_LOG_LEVEL (debug, info, warn, error) for diagnostic logs.
`

var (
	ErrUsage             = errors.New("main: unknown command; see texopt -h")
	ErrBackupsIncomplete = errors.New("main: some backups cannot be restored")
)

func main() {
	if err := main1(os.Args[1:]); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func main1(args []string) error {
	if lvl := os.Getenv("TEXOPT_LOG_LEVEL"); lvl != "" {
		if err := logging.SetLogLevel("*", lvl); err != nil {
			return err
		}
	}

	if len(args) == 0 {
		os.Stderr.WriteString(usageStr)
		return ErrUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch args[0] {
	case "apply":
		return runApply(ctx, args[1:])
	case "restore":
		return runRestore(ctx, args[1:])
	case "status":
		return runStatus(ctx, args[1:])
	case "-h", "-help", "--help", "help":
		os.Stdout.WriteString(usageStr)
		return nil
	}
	return ErrUsage
}

// commonFlags are shared by every command.
type commonFlags struct {
	project string
	journal string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.project, "project", ".", "project directory")
	fs.StringVar(&c.journal, "journal", "", "journal directory (default <project>/Library/texopt)")
}

func (c *commonFlags) journalPath() string {
	if c.journal != "" {
		return c.journal
	}
	return filepath.Join(c.project, "Library", "texopt")
}
