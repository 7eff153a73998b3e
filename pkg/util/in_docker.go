// Package util contains any functions used across the application that don't match
// any other package
package util

import "os"

func IsRunningInDocker() bool {
	return FileExists("/.dockerenv")
}

func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
