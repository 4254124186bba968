//go:build unix

package service

import (
	"os/exec"
	"syscall"
)

// detach puts the child in its own session so it survives the parent
// terminal closing.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
