//go:build linux

package linux

import (
	"fmt"
	"syscall"

	"github.com/arborist-labs/resmon/model"
	"github.com/arborist-labs/resmon/probe"
)

// ProcessActions sends POSIX signals to control a process. A thin OS
// wrapper per spec §6; it holds no derivation logic.
type ProcessActions struct{}

func NewProcessActions() *ProcessActions { return &ProcessActions{} }

func (a *ProcessActions) Capabilities() model.ProcessActionCapabilities {
	return model.ProcessActionCapabilities{
		CanTerminate: true,
		CanKill:      true,
		CanStop:      true,
		CanContinue:  true,
	}
}

func (a *ProcessActions) Terminate(pid model.Pid) probe.ActionResult {
	return signalResult(pid, syscall.SIGTERM)
}

func (a *ProcessActions) Kill(pid model.Pid) probe.ActionResult {
	return signalResult(pid, syscall.SIGKILL)
}

func (a *ProcessActions) Stop(pid model.Pid) probe.ActionResult {
	return signalResult(pid, syscall.SIGSTOP)
}

func (a *ProcessActions) Resume(pid model.Pid) probe.ActionResult {
	return signalResult(pid, syscall.SIGCONT)
}

func signalResult(pid model.Pid, sig syscall.Signal) probe.ActionResult {
	if err := syscall.Kill(int(pid), sig); err != nil {
		return probe.ActionResult{Success: false, ErrorMessage: fmt.Sprintf("signal %v: %v", sig, err)}
	}
	return probe.ActionResult{Success: true}
}
