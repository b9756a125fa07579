//go:build windows

package windows

import (
	"fmt"

	"golang.org/x/sys/windows"

	"github.com/arborist-labs/resmon/model"
	"github.com/arborist-labs/resmon/probe"
)

// ProcessActions exposes only terminate/kill on Windows, per spec §6
// ("Windows exposes only terminate/kill").
type ProcessActions struct{}

func NewProcessActions() *ProcessActions { return &ProcessActions{} }

func (a *ProcessActions) Capabilities() model.ProcessActionCapabilities {
	return model.ProcessActionCapabilities{
		CanTerminate: true,
		CanKill:      true,
	}
}

func (a *ProcessActions) Terminate(pid model.Pid) probe.ActionResult {
	return terminateProcess(pid, 0)
}

func (a *ProcessActions) Kill(pid model.Pid) probe.ActionResult {
	return terminateProcess(pid, 1)
}

func (a *ProcessActions) Stop(model.Pid) probe.ActionResult {
	return probe.ActionResult{Success: false, ErrorMessage: "stop is not supported on Windows"}
}

func (a *ProcessActions) Resume(model.Pid) probe.ActionResult {
	return probe.ActionResult{Success: false, ErrorMessage: "resume is not supported on Windows"}
}

func terminateProcess(pid model.Pid, exitCode uint32) probe.ActionResult {
	handle, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, uint32(pid))
	if err != nil {
		return probe.ActionResult{Success: false, ErrorMessage: fmt.Sprintf("OpenProcess: %v", err)}
	}
	defer windows.CloseHandle(handle)
	if err := windows.TerminateProcess(handle, exitCode); err != nil {
		return probe.ActionResult{Success: false, ErrorMessage: fmt.Sprintf("TerminateProcess: %v", err)}
	}
	return probe.ActionResult{Success: true}
}
