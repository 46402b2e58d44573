package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// BuildInfo is stamped into the binary at link time.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

//nolint:gochecknoglobals // set once from main
var buildInfo BuildInfo

// SetBuildInfo records the version reported by "janitor version".
func SetBuildInfo(info BuildInfo) {
	buildInfo = info
	rootCmd.Version = formatVersion(info)
}

func formatVersion(info BuildInfo) string {
	version := info.Version
	if version == "" {
		version = "dev"
	}
	commit := info.Commit
	if commit == "" {
		commit = "unknown"
	}
	date := info.Date
	if date == "" {
		date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Print version information",
	Long:    `Print the janitor version, commit and build date.`,
	Example: `  janitor version
  janitor version -o json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		type versionJSON struct {
			BuildInfo

			GoVersion string `json:"go_version"`
			Platform  string `json:"platform"`
		}
		v := versionJSON{
			BuildInfo: buildInfo,
			GoVersion: runtime.Version(),
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		}
		w := cmd.OutOrStdout()
		if formatter != nil && formatter.IsJSON() {
			return writeJSON(w, v)
		}
		out(w, "janitor %s\n", formatVersion(buildInfo))
		out(w, "%s %s\n", v.GoVersion, v.Platform)
		return nil
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.GroupID = "config"
}
