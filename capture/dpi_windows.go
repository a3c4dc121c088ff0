//go:build windows

package capture

import "golang.org/x/sys/windows"

// enableDPIAwareness stops Windows from scaling captures on high-DPI displays.
func enableDPIAwareness() {
	user32 := windows.NewLazySystemDLL("user32.dll")
	proc := user32.NewProc("SetProcessDPIAware")
	if proc.Find() != nil {
		return
	}
	_, _, _ = proc.Call()
}
