//go:build !linux && !darwin && !freebsd && !windows

package platform

import "fmt"

var errUnsupported = fmt.Errorf("platform: virtual memory reservation is not supported on this platform")

func reserveVirtual(size, pageSize uintptr) (uintptr, error) { return 0, errUnsupported }
func commitVirtual(addr, size uintptr) error                 { return errUnsupported }
func decommitVirtual(addr, size uintptr) error                { return errUnsupported }
func releaseVirtual(addr, size uintptr) error                 { return errUnsupported }

