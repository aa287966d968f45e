// Package version reports build information injected with -ldflags.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

var (
	// These variables are set during build time
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// maxDeps is how many dependencies FullVersion lists.
const maxDeps = 8

// BuildInfo contains build and runtime information
type BuildInfo struct {
	Version   string `json:"version" yaml:"version"`
	SemVer    string `json:"semver" yaml:"semver"`
	BuildDate string `json:"buildDate" yaml:"buildDate"`
	GitCommit string `json:"gitCommit" yaml:"gitCommit"`

	// Module is the main module path, or empty when unavailable
	Module string `json:"module" yaml:"module"`

	GoVersion string `json:"goVersion" yaml:"goVersion"`
	Platform  string `json:"platform" yaml:"platform"`
	NumCPU    int    `json:"numCPU" yaml:"numCPU"`

	Deps []Module `json:"deps" yaml:"deps"`
}

// Module represents a Go module dependency
type Module struct {
	Path    string `json:"path" yaml:"path"`
	Version string `json:"version" yaml:"version"`
}

// GetBuildInfo returns build information
func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		SemVer:    strings.TrimPrefix(strings.Split(Version, "-")[0], "v"),
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		NumCPU:    runtime.NumCPU(),
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	info.Module = bi.Main.Path
	for _, setting := range bi.Settings {
		// Prefer the VCS stamp when ldflags did not set a commit
		if setting.Key == "vcs.revision" && info.GitCommit == "unknown" {
			info.GitCommit = setting.Value
		}
	}
	for _, dep := range bi.Deps {
		info.Deps = append(info.Deps, Module{Path: dep.Path, Version: dep.Version})
	}

	return info
}

// Short is the one-line version string
func Short() string {
	return fmt.Sprintf("classify %s (%s, %s)", Version, shortCommit(GitCommit), BuildDate)
}

// FullVersion returns a formatted string with complete version information
func FullVersion() string {
	return format(GetBuildInfo())
}

func format(info BuildInfo) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Classify %s\n", info.Version))
	b.WriteString("========================================\n\n")

	b.WriteString("Version Information:\n")
	b.WriteString(fmt.Sprintf("  Version:      %s\n", info.Version))
	b.WriteString(fmt.Sprintf("  Semantic Ver: %s\n", info.SemVer))
	b.WriteString(fmt.Sprintf("  Build Date:   %s\n", info.BuildDate))
	b.WriteString(fmt.Sprintf("  Commit:       %s\n", info.GitCommit))
	b.WriteString("\n")

	b.WriteString("Go Build Information:\n")
	b.WriteString(fmt.Sprintf("  Go Version:   %s\n", info.GoVersion))
	b.WriteString(fmt.Sprintf("  Platform:     %s\n", info.Platform))
	b.WriteString(fmt.Sprintf("  CPUs:         %d\n", info.NumCPU))
	if info.Module != "" {
		b.WriteString(fmt.Sprintf("  Module:       %s\n", info.Module))
	}

	if len(info.Deps) > 0 {
		b.WriteString("\nDependencies:\n")
		for _, dep := range info.Deps[:min(maxDeps, len(info.Deps))] {
			b.WriteString(fmt.Sprintf("  - %s@%s\n", dep.Path, dep.Version))
		}
		if len(info.Deps) > maxDeps {
			b.WriteString(fmt.Sprintf("  ... and %d more\n", len(info.Deps)-maxDeps))
		}
	}

	return b.String()
}

func shortCommit(c string) string {
	if len(c) > 12 {
		return c[:12]
	}
	return c
}
