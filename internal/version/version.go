package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

const defaultModule = "pkt.systems/chansync"

// buildVersion is set via -ldflags "-X pkt.systems/chansync/internal/version.buildVersion=...".
var buildVersion = ""

// Info describes the running binary.
type Info struct {
	Module   string
	Version  string
	Revision string
	Modified bool
}

// String renders the info the way `chansync version` prints it.
func (i Info) String() string {
	out := i.Module + " " + i.Version
	if i.Revision != "" {
		out += fmt.Sprintf(" (%s", i.Revision)
		if i.Modified {
			out += ", modified"
		}
		out += ")"
	}
	return out
}

// Read collects version info from the build.
func Read() Info {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		info = nil
	}
	return fromBuildInfo(info)
}

func fromBuildInfo(info *debug.BuildInfo) Info {
	out := Info{Module: defaultModule, Version: "v0.0.0-unknown"}
	if info != nil {
		if path := strings.TrimSpace(info.Main.Path); path != "" {
			out.Module = path
		}
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				out.Revision = shortRevision(setting.Value)
			case "vcs.modified":
				out.Modified = setting.Value == "true"
			}
		}
	}
	switch {
	case strings.TrimSpace(buildVersion) != "":
		out.Version = strings.TrimSpace(buildVersion)
	case info != nil && info.Main.Version != "" && info.Main.Version != "(devel)":
		out.Version = strings.TrimSpace(info.Main.Version)
	default:
		if v := pseudoVersion(info); v != "" {
			out.Version = v
		}
	}
	out.Version = strings.TrimSuffix(out.Version, "+dirty")
	return out
}

func pseudoVersion(info *debug.BuildInfo) string {
	if info == nil {
		return ""
	}
	var revision, vcsTime string
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.time":
			vcsTime = setting.Value
		}
	}
	if revision == "" || vcsTime == "" {
		return ""
	}
	parsed, err := time.Parse(time.RFC3339, vcsTime)
	if err != nil {
		return ""
	}
	return "v0.0.0-" + parsed.UTC().Format("20060102150405") + "-" + shortRevision(revision)
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
