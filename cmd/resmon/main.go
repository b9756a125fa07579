// Package resmon wires the probe, model, and sampler layers into a
// runnable binary: one BackgroundSampler per model domain, a headless
// JSON-line mode, and an interactive bubbletea table. Adapted from the
// teacher's cmd/monitor/main.go headless-flag pattern.
package resmon

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"

	"github.com/arborist-labs/resmon/config"
	"github.com/arborist-labs/resmon/model"
	plinux "github.com/arborist-labs/resmon/probe/linux"
	"github.com/arborist-labs/resmon/probe/linux/netlink"
	"github.com/arborist-labs/resmon/sampler"
	"github.com/arborist-labs/resmon/tui"
)

var (
	headless   = flag.Bool("headless", false, "print JSON snapshots instead of the interactive table")
	verbose    = flag.Bool("verbose", false, "enable verbose structured logging")
	intervalMs = flag.Int("interval", 1000, "sampling interval in milliseconds")
	netlinkTTL = flag.Int("netlink-ttl-ms", 500, "netlink socket-stat cache TTL in milliseconds (0 disables caching)")
)

// Run parses flags and drives the pipeline until interrupted.
func Run() error {
	flag.Parse()

	logger := buildLogger(*verbose)
	cfg := config.Default()
	cfg.RefreshInterval = time.Duration(*intervalMs) * time.Millisecond
	cfg = cfg.Clamp()

	if runtime.GOOS != "linux" {
		return fmt.Errorf("this build only wires Linux probes; see probe/windows for the Win32 counterparts")
	}

	nl := netlink.NewClient(time.Duration(*netlinkTTL) * time.Millisecond)
	defer nl.Close()

	processProbe := plinux.NewProcessProbe("/proc", "/sys", nl, logger)
	systemProbe := plinux.NewSystemProbe("/proc", "/sys", logger)
	diskProbe := plinux.NewDiskProbe("/proc")
	gpuProbe := plinux.NewGpuProbe("/sys", logger)

	processModel := model.NewProcessModel(processProbe, logger)
	systemModel := model.NewSystemModel(systemProbe, cfg.HistorySeconds, logger)
	storageModel := model.NewStorageModel(diskProbe, logger)
	gpuModel := model.NewGpuModel(gpuProbe, logger)

	processSampler := sampler.New(processModel, cfg.RefreshInterval, logger)
	systemSampler := sampler.New(systemModel, cfg.RefreshInterval, logger)
	storageSampler := sampler.New(storageModel, cfg.RefreshInterval, logger)
	gpuSampler := sampler.New(gpuModel, cfg.RefreshInterval, logger)

	processSampler.Start()
	systemSampler.Start()
	storageSampler.Start()
	gpuSampler.Start()
	defer processSampler.Stop()
	defer systemSampler.Stop()
	defer storageSampler.Stop()
	defer gpuSampler.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *headless {
		return runHeadless(ctx, processModel, systemModel, cfg.RefreshInterval)
	}

	program := tea.NewProgram(tui.New(snapshotAdapter{processModel, systemModel}, cfg.RefreshInterval))
	go func() {
		<-ctx.Done()
		program.Quit()
	}()
	_, err := program.Run()
	return err
}

func buildLogger(verbose bool) logr.Logger {
	if !verbose {
		return logr.Discard()
	}
	zapLog, err := zap.NewDevelopment()
	if err != nil {
		return logr.Discard()
	}
	return zapr.NewLogger(zapLog)
}

func runHeadless(ctx context.Context, pm *model.ProcessModel, sm *model.SystemModel, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	enc := json.NewEncoder(os.Stdout)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_ = enc.Encode(struct {
				System    model.SystemSnapshot    `json:"system"`
				Processes []model.ProcessSnapshot `json:"processes"`
			}{sm.Snapshot(), pm.Snapshots()})
		}
	}
}

// snapshotAdapter satisfies tui.Snapshotter, translating the models'
// method names into the shape the TUI expects.
type snapshotAdapter struct {
	process *model.ProcessModel
	system  *model.SystemModel
}

func (a snapshotAdapter) ProcessSnapshots() []model.ProcessSnapshot { return a.process.Snapshots() }
func (a snapshotAdapter) SystemSnapshot() model.SystemSnapshot      { return a.system.Snapshot() }
