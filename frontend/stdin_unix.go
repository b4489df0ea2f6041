//go:build unix

package frontend

import "golang.org/x/sys/unix"

var errWouldBlock = unix.EAGAIN

func setNonblock(fd int, on bool) error {
	return unix.SetNonblock(fd, on)
}

func readNonblock(fd int, p []byte) (int, error) {
	return unix.Read(fd, p)
}
