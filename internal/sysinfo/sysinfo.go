// Package sysinfo describes the machine a training profile was recorded on.
package sysinfo

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
)

type Info struct {
	GoVersion       string   `json:"goVersion"`
	GOOS            string   `json:"goos"`
	GOARCH          string   `json:"goarch"`
	CPUModel        string   `json:"cpuModel,omitempty"`
	LogicalCores    int      `json:"logicalCores"`
	Platform        string   `json:"platform,omitempty"`
	PlatformVersion string   `json:"platformVersion,omitempty"`
	KernelVersion   string   `json:"kernelVersion,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

// Collect gathers host details. Lookups that fail are recorded in Warnings
// and leave the corresponding fields empty.
func Collect(ctx context.Context) Info {
	info := Info{
		GoVersion:    runtime.Version(),
		GOOS:         runtime.GOOS,
		GOARCH:       runtime.GOARCH,
		LogicalCores: runtime.NumCPU(),
	}
	if cpus, err := cpu.InfoWithContext(ctx); err != nil {
		info.Warnings = append(info.Warnings, "cpu info: "+err.Error())
	} else if len(cpus) > 0 {
		info.CPUModel = cpus[0].ModelName
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil && n > 0 {
		info.LogicalCores = n
	}
	if h, err := host.InfoWithContext(ctx); err != nil {
		info.Warnings = append(info.Warnings, "host info: "+err.Error())
	} else {
		info.Platform = h.Platform
		info.PlatformVersion = h.PlatformVersion
		info.KernelVersion = h.KernelVersion
	}
	return info
}
