package core

import (
	"fmt"

	"go.uber.org/zap"
)

var Version string

const NoVersion = "no_version_info"

// SetVersion prefers the version linked in at build time over the configured one.
func SetVersion(c *Conf, versionByBuildFlag string) string {
	switch {
	case versionByBuildFlag != "":
		Version = versionByBuildFlag
	case c != nil && c.Version != "":
		Version = c.Version
	default:
		Version = NoVersion
	}
	zap.L().Info(fmt.Sprintf("progcheck version is %s", Version))
	return Version
}
