//go:build windows

package config

import (
	"os"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
	"golang.org/x/term"
)

const enableVirtualTerminalProcessing uint32 = 0x4

// windows10 reports whether console supports VT100 sequences at all.
func windows10() bool {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\Windows NT\CurrentVersion`, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer k.Close()

	v, _, err := k.GetIntegerValue("CurrentMajorVersionNumber")
	return err == nil && v >= 10
}

// EnableColorOutput checks if colorized output is possible and
// switches console to VT100 sequence processing.
func EnableColorOutput(stream *os.File) bool {
	if !windows10() || !term.IsTerminal(int(stream.Fd())) {
		return false
	}

	h := windows.Handle(stream.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return false
	}
	return windows.SetConsoleMode(h, mode|enableVirtualTerminalProcessing) == nil
}
