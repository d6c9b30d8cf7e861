package ui

import (
	"sync/atomic"

	"golang.org/x/term"
)

var wrapWidth atomic.Int64

func setWrapWidth(width int) {
	if width <= 0 {
		return
	}
	wrapWidth.Store(int64(width))
}

// DetectWrapWidth wraps output to the width of the terminal behind fd.
// Nothing changes when fd is not a terminal.
func DetectWrapWidth(fd uintptr) {
	if !term.IsTerminal(int(fd)) {
		return
	}
	width, _, err := term.GetSize(int(fd))
	if err != nil {
		return
	}
	setWrapWidth(width)
}

func currentWrapWidth() int {
	return int(wrapWidth.Load())
}
