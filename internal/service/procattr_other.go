//go:build !unix

package service

import "os/exec"

func configureProcessGroup(cmd *exec.Cmd) {}
