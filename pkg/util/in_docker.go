package util

import (
	"os"
	"strings"
)

var (
	dockerEnvFile = "/.dockerenv"
	cgroupFile    = "/proc/1/cgroup"
)

// IsRunningInDocker reports whether the process looks like it runs inside a
// container, either through docker's marker file or the init cgroup
func IsRunningInDocker() bool {
	if _, err := os.Stat(dockerEnvFile); err == nil {
		return true
	}

	b, err := os.ReadFile(cgroupFile)
	if err != nil {
		return false
	}

	s := string(b)
	return strings.Contains(s, "docker") || strings.Contains(s, "containerd") || strings.Contains(s, "kubepods")
}
