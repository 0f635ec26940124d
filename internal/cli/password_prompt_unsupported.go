//go:build !windows && !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package cli

import (
	"errors"
	"os"
)

func readPasswordNoEcho(_ *os.File) ([]byte, error) {
	return nil, errors.New("password entry without echo is not supported on this platform")
}
