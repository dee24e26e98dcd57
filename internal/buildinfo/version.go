// Package buildinfo stamps this binary with a validated semantic version.
package buildinfo

import (
	"fmt"

	"github.com/hashicorp/go-version"
)

// Version is this module's own release version. It is parsed through
// go-version at init time purely to fail loudly if it is ever hand-edited
// into something non-semver; the algorithm itself performs no version
// negotiation over the wire (spec: no schema negotiation is performed).
const Version = "0.1.0"

var parsed *version.Version

func init() {
	v, err := version.NewSemver(Version)
	if err != nil {
		panic(fmt.Sprintf("buildinfo: invalid version string %q: %v", Version, err))
	}
	parsed = v
}

// String returns the validated version string.
func String() string {
	return parsed.String()
}
