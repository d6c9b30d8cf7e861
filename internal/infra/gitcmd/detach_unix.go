//go:build unix

package gitcmd

import (
	"os/exec"
	"syscall"
)

// detach starts git in its own process group so a terminal interrupt aimed
// at wsm does not reach it. Only the context ends a running git.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
