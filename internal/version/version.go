// Package version holds the advisor's build identity. Values are injected at build time:
//
//	go build -ldflags "-X eu5advisor/internal/version.Version=0.2.0+14.ab12cd3 \
//	  -X eu5advisor/internal/version.GitCommit=$(git rev-parse HEAD) \
//	  -X eu5advisor/internal/version.BuildDate=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// ProductName prefixes formatted versions.
const ProductName = "EU5 Strategy Advisor"

const unknown = "unknown"

// Build information set via -ldflags.
var (
	Version   = "0.1.0"
	GitCommit = unknown
	BuildDate = unknown
)

// Info is the version report printed by the version command.
type Info struct {
	Version     string          `json:"version"`
	BaseVersion string          `json:"baseVersion"`
	GitCommit   string          `json:"gitCommit"`
	BuildDate   string          `json:"buildDate"`
	GoVersion   string          `json:"goVersion"`
	Platform    string          `json:"platform"`
	SemVer      *semver.Version `json:"-"`
}

// GetInfo parses the build version and gathers runtime details.
func GetInfo() (*Info, error) {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("invalid semantic version '%s': %w", Version, err)
	}

	return &Info{
		Version:     Version,
		BaseVersion: fmt.Sprintf("%d.%d.%d", sv.Major(), sv.Minor(), sv.Patch()),
		GitCommit:   GitCommit,
		BuildDate:   BuildDate,
		GoVersion:   runtime.Version(),
		Platform:    runtime.GOOS + "/" + runtime.GOARCH,
		SemVer:      sv,
	}, nil
}

// ValidateVersion reports whether Version is a valid semantic version.
func ValidateVersion() error {
	_, err := GetInfo()
	return err
}

// GetBuildMetadata returns the part of Version after "+", if any.
func GetBuildMetadata() string {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return ""
	}
	return sv.Metadata()
}

// GetCommitCount reads the commit count from build metadata such as "14.ab12cd3".
func GetCommitCount() int {
	first, _, _ := strings.Cut(GetBuildMetadata(), ".")
	count, err := strconv.Atoi(first)
	if err != nil || count < 0 {
		return 0
	}
	return count
}

// IsPrerelease reports whether Version carries a prerelease tag.
func IsPrerelease() bool {
	sv, err := semver.NewVersion(Version)
	return err == nil && sv.Prerelease() != ""
}

// IsDevelopment reports whether the binary was built without release ldflags.
func IsDevelopment() bool {
	return GitCommit == unknown || BuildDate == unknown
}

// GetBuildTime parses BuildDate.
func GetBuildTime() (time.Time, error) {
	if BuildDate == unknown || BuildDate == "" {
		return time.Time{}, fmt.Errorf("build date not available")
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, BuildDate); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse build date '%s'", BuildDate)
}

// GetFormattedVersion returns a one-line version such as
// "EU5 Strategy Advisor v0.1.0, commit ab12cd3, built 2025-06-01".
func GetFormattedVersion() string {
	info, err := GetInfo()
	if err != nil {
		return fmt.Sprintf("%s v%s (invalid version)", ProductName, Version)
	}

	parts := []string{fmt.Sprintf("%s v%s", ProductName, info.Version)}
	if info.GitCommit != unknown && info.GitCommit != "" {
		parts = append(parts, "commit "+shortCommit(info.GitCommit))
	}
	if info.BuildDate != unknown && info.BuildDate != "" {
		parts = append(parts, "built "+info.BuildDate)
	}
	return strings.Join(parts, ", ")
}

// buildType labels the binary as a development, prerelease or release build.
func buildType() string {
	switch {
	case IsDevelopment():
		return "development"
	case IsPrerelease():
		return "prerelease"
	default:
		return "release"
	}
}

// GetDetailedVersion returns a multi-line report for the version --detailed output.
func GetDetailedVersion() string {
	info, err := GetInfo()
	if err != nil {
		return fmt.Sprintf("%s v%s (error: %v)", ProductName, Version, err)
	}

	lines := []string{
		fmt.Sprintf("%s v%s", ProductName, info.Version),
		"Git Commit: " + info.GitCommit,
		"Build Date: " + info.BuildDate,
		"Build Type: " + buildType(),
	}
	if built, err := GetBuildTime(); err == nil {
		lines = append(lines, "Build Time: "+built.UTC().Format(time.RFC1123))
	}
	if count := GetCommitCount(); count > 0 {
		lines = append(lines, fmt.Sprintf("Commit Count: %d", count))
	}
	if meta := info.SemVer.Metadata(); meta != "" {
		lines = append(lines, "Build Metadata: "+meta)
	}
	lines = append(lines, "Go Version: "+info.GoVersion, "Platform: "+info.Platform)

	return strings.Join(lines, "\n")
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
