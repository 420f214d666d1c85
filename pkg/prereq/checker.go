package prereq

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	severityBlocker = "blocker"
	severityWarning = "warning"
)

// CheckResult is one prerequisite evaluation row.
type CheckResult struct {
	Name        string `json:"name"`
	Pass        bool   `json:"pass"`
	Severity    string `json:"severity"`
	Current     string `json:"current"`
	Required    string `json:"required"`
	Remediation string `json:"remediation"`
}

// Report is the full prereq check result.
type Report struct {
	GeneratedAt time.Time     `json:"generated_at"`
	HostOS      string        `json:"host_os"`
	HostArch    string        `json:"host_arch"`
	Checks      []CheckResult `json:"checks"`
	Pass        bool          `json:"pass"`
}

// Inputs names the paths a sweep is about to use.
type Inputs struct {
	BinPath    string
	DataPath   string
	OutDir     string
	PreloadLib string
}

// Snapshot captures host facts before evaluation.
type Snapshot struct {
	HostOS         string
	HostArch       string
	BinPresent     bool
	BinExecutable  bool
	DataReadable   bool
	OutDirWritable bool
	PreloadPresent bool
	PreloadLib     string
}

// CollectSnapshot gathers facts about the sweep inputs on this host.
func CollectSnapshot(in Inputs) Snapshot {
	binInfo, binErr := os.Stat(in.BinPath)
	return Snapshot{
		HostOS:         runtime.GOOS,
		HostArch:       runtime.GOARCH,
		BinPresent:     binErr == nil && !binInfo.IsDir(),
		BinExecutable:  binErr == nil && !binInfo.IsDir() && binInfo.Mode()&0o111 != 0,
		DataReadable:   pathReadable(in.DataPath),
		OutDirWritable: dirWritable(in.OutDir),
		PreloadPresent: in.PreloadLib != "" && pathReadable(in.PreloadLib),
		PreloadLib:     in.PreloadLib,
	}
}

// Evaluate returns a report with pass/fail checks.
func Evaluate(snapshot Snapshot) Report {
	checks := []CheckResult{
		{
			Name:        "binary_present",
			Pass:        snapshot.BinPresent,
			Severity:    severityBlocker,
			Current:     boolLabel(snapshot.BinPresent),
			Required:    "true",
			Remediation: "Point --bin at the GP executable.",
		},
		{
			Name:        "binary_executable",
			Pass:        snapshot.BinExecutable,
			Severity:    severityBlocker,
			Current:     boolLabel(snapshot.BinExecutable),
			Required:    "true",
			Remediation: "Set the executable bit on the GP binary (chmod +x).",
		},
		{
			Name:        "data_path_readable",
			Pass:        snapshot.DataReadable,
			Severity:    severityBlocker,
			Current:     boolLabel(snapshot.DataReadable),
			Required:    "true",
			Remediation: "Point --data at a problem metadata file or directory.",
		},
		{
			Name:        "output_dir_writable",
			Pass:        snapshot.OutDirWritable,
			Severity:    severityBlocker,
			Current:     boolLabel(snapshot.OutDirWritable),
			Required:    "true",
			Remediation: "Choose a writable --out directory for workbook artifacts.",
		},
		{
			Name:        "host_linux",
			Pass:        snapshot.HostOS == "linux",
			Severity:    severityWarning,
			Current:     snapshot.HostOS,
			Required:    "linux",
			Remediation: "LD_PRELOAD of the allocator library only applies on Linux hosts.",
		},
		{
			Name:        "preload_lib_present",
			Pass:        snapshot.PreloadPresent,
			Severity:    severityWarning,
			Current:     boolLabel(snapshot.PreloadPresent),
			Required:    "true",
			Remediation: "Install jemalloc (or adjust invocation.preload_lib) so GP runs use the intended allocator.",
		},
	}

	pass := true
	for _, check := range checks {
		if check.Severity == severityBlocker && !check.Pass {
			pass = false
			break
		}
	}

	return Report{
		GeneratedAt: time.Now().UTC(),
		HostOS:      snapshot.HostOS,
		HostArch:    snapshot.HostArch,
		Checks:      checks,
		Pass:        pass,
	}
}

// RunLocal evaluates sweep prerequisites on the current host.
func RunLocal(in Inputs) Report {
	return Evaluate(CollectSnapshot(in))
}

// StrictPass returns true only if all checks pass, including warnings.
func StrictPass(report Report) bool {
	for _, check := range report.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// MarshalJSON returns pretty JSON for external reporting.
func MarshalJSON(report Report) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}

func pathReadable(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func dirWritable(dir string) bool {
	if dir == "" {
		dir = "."
	}
	probe, err := os.CreateTemp(dir, ".gpsweep-probe-*")
	if err != nil {
		return false
	}
	name := probe.Name()
	probe.Close()
	os.Remove(filepath.Clean(name))
	return true
}

func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
