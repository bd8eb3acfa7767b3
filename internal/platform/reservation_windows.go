//go:build windows

package platform

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func reserveVirtual(size, pageSize uintptr) (uintptr, error) {
	addr, err := windows.VirtualAlloc(0, size, windows.MEM_RESERVE, windows.PAGE_NOACCESS)
	if err != nil {
		return 0, fmt.Errorf("platform: reserve %d bytes: %w", size, err)
	}
	return addr, nil
}

func commitVirtual(addr, size uintptr) error {
	if size == 0 {
		return nil
	}
	if _, err := windows.VirtualAlloc(addr, size, windows.MEM_COMMIT, windows.PAGE_READWRITE); err != nil {
		return fmt.Errorf("platform: commit %d bytes at %#x: %w", size, addr, err)
	}
	return nil
}

func decommitVirtual(addr, size uintptr) error {
	if size == 0 {
		return nil
	}
	if err := windows.VirtualFree(addr, size, windows.MEM_DECOMMIT); err != nil {
		return fmt.Errorf("platform: decommit %d bytes at %#x: %w", size, addr, err)
	}
	return nil
}

func releaseVirtual(addr, size uintptr) error {
	if size == 0 {
		return nil
	}
	if err := windows.VirtualFree(addr, 0, windows.MEM_RELEASE); err != nil {
		return fmt.Errorf("platform: release %d bytes at %#x: %w", size, addr, err)
	}
	return nil
}
