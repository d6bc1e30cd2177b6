//go:build !windows

package app

import (
	"os"
	"syscall"
)

// toggleSignals flip blocking when delivered to the daemon.
var toggleSignals = []os.Signal{syscall.SIGUSR1}
