package app

import "os"

var toggleSignals []os.Signal
