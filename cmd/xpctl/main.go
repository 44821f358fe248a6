// Operator CLI for the state snapshot file. Run it only while the server is
// stopped: the server rewrites the snapshot after every mutation.
// Usage: go run ./cmd/xpctl --snapshot data/state.json <command>
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"lg/wellness-xp-api/internal/store"
)

var snapshotPath string

var rootCmd = &cobra.Command{
	Use:           "xpctl",
	Short:         "xpctl inspects and edits the wellness XP state snapshot",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&snapshotPath, "snapshot", "data/state.json", "Path to the state snapshot JSON file")
	rootCmd.AddCommand(showCmd, verifyCmd, levelsCmd, onboardCmd)
}

// openStore loads the snapshot through the same path the server uses, with
// its logging silenced.
func openStore(ctx context.Context) (*store.Store, *store.FileSnapshotter) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	fs := store.NewFileSnapshotter(snapshotPath)
	return store.Open(ctx, fs, log), fs
}
