// Package remote provides the device-side plumbing for remote browser
// targets: an adb port forward and a minimal automation session client,
// just enough to point the remote browser at a benchmark URL.
package remote

import (
	"bytes"
	"fmt"
	"os/exec"
)

// DefaultPort is the automation port used on both ends of the forward.
const DefaultPort = 2828

// ADBForwarder forwards a local TCP port to the same port on the device.
type ADBForwarder struct {
	Port int
}

func (f *ADBForwarder) Forward() error {
	port := f.Port
	if port == 0 {
		port = DefaultPort
	}
	spec := fmt.Sprintf("tcp:%d", port)

	out, err := exec.Command("adb", "forward", spec, spec).CombinedOutput()
	if err != nil {
		return fmt.Errorf("adb forward %s: %w: %s", spec, err, bytes.TrimSpace(out))
	}
	return nil
}
