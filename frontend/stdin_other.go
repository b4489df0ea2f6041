//go:build !unix

package frontend

import (
	"errors"
	"os"
)

var errWouldBlock = errors.New("would block")

func setNonblock(int, bool) error {
	return nil
}

// readNonblock falls back to a blocking read of stdin.
func readNonblock(_ int, p []byte) (int, error) {
	return os.Stdin.Read(p)
}
