package version

import (
	"fmt"
	"io"
	"runtime"
)

// Set at build time:
//
//	go build -ldflags "-X github.com/dreamerjackson/browser/version.Version=v0.3.0 -X ..."
var (
	BuildTS   = "None"
	GitHash   = "None"
	GitBranch = "None"
	Version   = "None"
)

// GetVersion returns the version with the short commit hash.
func GetVersion() string {
	if GitHash == "" || GitHash == "None" {
		return Version
	}

	h := GitHash
	if len(h) > 7 {
		h = h[:7]
	}

	return fmt.Sprintf("%s-%s", Version, h)
}

// Printer writes the build information to w.
func Printer(w io.Writer) {
	fmt.Fprintln(w, "Version:          ", GetVersion())
	fmt.Fprintln(w, "Git Branch:       ", GitBranch)
	fmt.Fprintln(w, "Git Commit:       ", GitHash)
	fmt.Fprintln(w, "Build Time (UTC): ", BuildTS)
	fmt.Fprintln(w, "Go Version:       ", runtime.Version())
}
