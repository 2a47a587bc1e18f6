package util

import "os"

// dockerEnvFile is created by the Docker runtime in every container
var dockerEnvFile = "/.dockerenv"

// IsRunningInDocker reports whether the vault runs inside a container, where
// a SQLite file that isn't on a mounted volume is lost on restart
func IsRunningInDocker() bool {
	_, err := os.Stat(dockerEnvFile)
	return err == nil
}
