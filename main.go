package main

import (
	"runtime/debug"

	"github.com/marcus/sip/cmd"
)

// Version is injected with -ldflags "-X main.Version=...".
var Version = "dev"

// buildVersion prefers an injected version, then the module version from
// `go install ...@vX.Y.Z`, then "devel+<rev>[+dirty]" from VCS stamping.
func buildVersion(v string) string {
	if v != "" && v != "dev" {
		return v
	}
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return v
	}
	if mv := info.Main.Version; mv != "" && mv != "(devel)" {
		return mv
	}

	var rev string
	dirty := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev == "" {
		return v
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	out := "devel+" + rev
	if dirty {
		out += "+dirty"
	}
	return out
}

func main() {
	cmd.SetVersion(buildVersion(Version))
	cmd.Execute()
}
