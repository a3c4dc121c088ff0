//go:build !windows

package capture

func enableDPIAwareness() {}
