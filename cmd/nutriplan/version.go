package nutriplan

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutriplan/internal/render"
)

// Set with -ldflags "-X github.com/saadjs/nutriplan/cmd/nutriplan.version=...".
var (
	version = "dev"
	commit  = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version/build metadata",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func printVersion(cmd *cobra.Command) {
	rev := commit
	if rev == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					rev = s.Value
				}
			}
		}
	}
	if rev == "" {
		rev = "unknown"
	}
	render.New(cmd.OutOrStdout()).KeyValues("nutriplan "+version, [][2]string{
		{"Commit", rev},
		{"OS/Arch", runtime.GOOS + "/" + runtime.GOARCH},
		{"Go", runtime.Version()},
	})
}
