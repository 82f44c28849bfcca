//go:build unix

package service

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup puts the tool in its own process group so a timeout
// also kills the helpers it spawns (tesseract, ghostscript).
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
