package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/ntn/internal/buildinfo"
	"github.com/aidanlsb/ntn/internal/notion"
)

const defaultModulePath = "github.com/aidanlsb/ntn"

type versionInfo struct {
	Version    string `json:"version"`
	ModulePath string `json:"module_path"`
	Commit     string `json:"commit,omitempty"`
	CommitTime string `json:"commit_time,omitempty"`
	Modified   bool   `json:"modified"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
	UserAgent  string `json:"user_agent"`
	BaseURL    string `json:"base_url"`
}

var readBuildInfo = debug.ReadBuildInfo

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show ntn version, build and endpoint information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentVersionInfo()
		info.BaseURL = getConfig().BaseURL
		if info.BaseURL == "" {
			info.BaseURL = notion.DefaultBaseURL
		}

		if isJSONOutput() {
			outputSuccess(info, nil)
			return nil
		}

		printLine("ntn %s", info.Version)
		rows := [][2]string{
			{"module", info.ModulePath},
			{"commit", info.Commit},
			{"built", info.CommitTime},
			{"go", info.GoVersion},
			{"platform", info.Platform},
			{"user-agent", info.UserAgent},
			{"endpoint", info.BaseURL},
		}
		for _, r := range rows {
			if r[1] != "" {
				printLine("  %-11s %s", r[0], r[1])
			}
		}
		if info.Modified {
			printLine("  %-11s %s", "tree", "modified")
		}
		return nil
	},
}

// currentVersionInfo merges the embedded build info with the values set at
// link time, which win only where the build info is silent.
func currentVersionInfo() versionInfo {
	info := versionInfo{Version: "devel", ModulePath: defaultModulePath, GoVersion: runtime.Version()}
	goos, goarch := runtime.GOOS, runtime.GOARCH

	if bi, ok := readBuildInfo(); ok && bi != nil {
		if bi.Main.Path != "" {
			info.ModulePath = bi.Main.Path
		}
		info.Version = normalizeVersion(bi.Main.Version)
		if bi.GoVersion != "" {
			info.GoVersion = bi.GoVersion
		}
		settings := make(map[string]string, len(bi.Settings))
		for _, s := range bi.Settings {
			settings[s.Key] = s.Value
		}
		if v := settings["GOOS"]; v != "" {
			goos = v
		}
		if v := settings["GOARCH"]; v != "" {
			goarch = v
		}
		info.Commit = settings["vcs.revision"]
		info.CommitTime = settings["vcs.time"]
		info.Modified = strings.EqualFold(settings["vcs.modified"], "true")
	}

	if info.Version == "devel" && buildinfo.Version != "" {
		info.Version = normalizeVersion(buildinfo.Version)
	}
	if info.Commit == "" {
		info.Commit = buildinfo.Commit
	}
	if info.CommitTime == "" {
		info.CommitTime = buildinfo.Date
	}

	info.Platform = fmt.Sprintf("%s/%s", goos, goarch)
	info.UserAgent = buildinfo.UserAgent()
	return info
}

func normalizeVersion(version string) string {
	if version == "" || version == "(devel)" {
		return "devel"
	}
	return version
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
