package version

import (
	"runtime/debug"
	"sync"
)

// ModulePath is the import path of this module.
const ModulePath = "github.com/kbukum/microdi"

// Version can be set at build time:
//
//	go build -ldflags "-X github.com/kbukum/microdi/version.Version=v1.2.0"
var Version = ""

var (
	once     sync.Once
	resolved string
)

// String returns the microdi version: the ldflags value if set, otherwise
// the version recorded for the module in the binary's build info, otherwise
// "dev".
func String() string {
	if Version != "" {
		return Version
	}
	once.Do(func() {
		resolved = fromBuildInfo(debug.ReadBuildInfo())
	})
	return resolved
}

func fromBuildInfo(info *debug.BuildInfo, ok bool) string {
	if !ok || info == nil {
		return "dev"
	}
	if info.Main.Path == ModulePath {
		return normalize(info.Main.Version)
	}
	for _, dep := range info.Deps {
		if dep.Path != ModulePath {
			continue
		}
		if dep.Replace != nil {
			return normalize(dep.Replace.Version)
		}
		return normalize(dep.Version)
	}
	return "dev"
}

func normalize(v string) string {
	if v == "" || v == "(devel)" {
		return "dev"
	}
	return v
}
