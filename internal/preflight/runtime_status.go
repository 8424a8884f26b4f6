package preflight

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DeviceProbe reports the current camera-card detection snapshot.
type DeviceProbe struct {
	Detected bool
	Device   string
	Label    string
	Type     string
}

// ProbeDevice attempts to detect and classify the block device a camera card
// would appear on, via lsblk. The watcher logs this when a device event
// arrives; a missing lsblk or an empty reply just reads as "not detected".
func ProbeDevice(device string) DeviceProbe {
	device = strings.TrimSpace(device)
	if device == "" {
		device = "/dev/sda1"
	}
	if _, err := exec.LookPath("lsblk"); err != nil {
		return DeviceProbe{Device: device}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "lsblk", "-no", "LABEL,FSTYPE", device)
	output, err := cmd.Output()
	if err != nil {
		return DeviceProbe{Device: device}
	}
	text := strings.TrimSpace(string(output))
	if text == "" {
		return DeviceProbe{Device: device}
	}
	fields := strings.Fields(text)
	label := "Unknown"
	if len(fields) > 0 && fields[0] != "" {
		label = fields[0]
	}
	fstype := ""
	if len(fields) > 1 {
		fstype = strings.ToLower(fields[1])
	}
	return DeviceProbe{
		Detected: true,
		Device:   device,
		Label:    label,
		Type:     classifyCardType(fstype),
	}
}

func classifyCardType(fstype string) string {
	switch strings.ToLower(strings.TrimSpace(fstype)) {
	case "exfat":
		return "exFAT card"
	case "vfat":
		return "FAT32 card"
	case "ext4":
		return "ext4 volume"
	default:
		return "Unknown"
	}
}

// DeviceDetail renders a display-friendly summary for logs and status output.
func (p DeviceProbe) DeviceDetail() string {
	if !p.Detected {
		return "No camera card detected"
	}
	return fmt.Sprintf("%s '%s' on %s", p.Type, p.Label, p.Device)
}
