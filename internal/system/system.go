package system

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// DefaultWorkers picks a compositing worker count for the host: one per
// logical CPU, reduced if available memory cannot hold the in-flight frame
// buffers (roughly three RGBA frames per worker at peak).
func DefaultWorkers(width, height int) int {
	workers := runtime.NumCPU()
	if counts, err := cpu.Counts(true); err == nil && counts > 0 {
		workers = counts
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return workers
	}

	perWorker := uint64(width) * uint64(height) * 4 * 3
	if perWorker == 0 {
		return workers
	}
	// Leave half the available memory for the decoder and encoder pipes.
	budget := vm.Available / 2
	if fit := int(budget / perWorker); fit > 0 && fit < workers {
		workers = fit
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// BestH264Encoder probes ffmpeg for hardware H.264 encoders, preferring
// VideoToolbox, then NVENC, falling back to libx264.
func BestH264Encoder() string {
	out, err := exec.Command("ffmpeg", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, enc := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(string(out), enc) {
			return enc
		}
	}
	return "libx264"
}

// VideoDuration asks ffprobe for the container duration in seconds
func VideoDuration(path string) (float64, error) {
	cmd := exec.Command("ffprobe", "-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, err
	}

	var duration float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration); err != nil {
		return 0, err
	}
	return duration, nil
}
