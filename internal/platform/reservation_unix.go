//go:build linux || darwin || freebsd

package platform

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// reserveVirtual reserves size bytes whose last page is the guard page. The
// guard page has no access permissions; everything before it is read-only,
// so an uncommitted slot reads as a zero word instead of faulting. Nothing
// is charged against physical memory or swap until commitVirtual makes a
// sub-range writable: the reservation is address space only, following
// pgavlin/warp's exec/memory_mmap.go technique of mmap'ing PROT_NONE up
// front.
func reserveVirtual(size, pageSize uintptr) (uintptr, error) {
	b, err := unix.Mmap(-1, 0, int(size), unix.PROT_NONE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return 0, fmt.Errorf("platform: reserve %d bytes: %w", size, err)
	}
	base := uintptr(unsafe.Pointer(&b[0]))
	if err := mprotect(base, size-pageSize, unix.PROT_READ); err != nil {
		_ = releaseVirtual(base, size)
		return 0, fmt.Errorf("platform: reserve %d bytes: %w", size, err)
	}
	return base, nil
}

// mprotect changes the protection of [addr, addr+size) in place; pages
// already written keep their contents.
func mprotect(addr, size uintptr, prot int) error {
	if size == 0 {
		return nil
	}
	_, _, errno := unix.Syscall(unix.SYS_MPROTECT, addr, size, uintptr(prot))
	if errno != 0 {
		return errno
	}
	return nil
}

// mmapFixed remaps [addr, addr+size) within an existing reservation with the
// given protection. An anonymous+fixed+private remap over already-reserved
// address space is how decommit is implemented: it drops the pages'
// physical backing, so they are zero-filled again when next committed.
func mmapFixed(addr, size uintptr, prot int) error {
	if size == 0 {
		return nil
	}
	const flags = unix.MAP_ANON | unix.MAP_PRIVATE | unix.MAP_FIXED
	_, _, errno := unix.Syscall6(unix.SYS_MMAP, addr, size, uintptr(prot), uintptr(flags), ^uintptr(0), 0)
	if errno != 0 {
		return errno
	}
	return nil
}

func commitVirtual(addr, size uintptr) error {
	if err := mprotect(addr, size, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return fmt.Errorf("platform: commit %d bytes at %#x: %w", size, addr, err)
	}
	return nil
}

func decommitVirtual(addr, size uintptr) error {
	if err := mmapFixed(addr, size, unix.PROT_NONE); err != nil {
		return fmt.Errorf("platform: decommit %d bytes at %#x: %w", size, addr, err)
	}
	return nil
}

func releaseVirtual(addr, size uintptr) error {
	if size == 0 {
		return nil
	}
	_, _, errno := unix.Syscall(unix.SYS_MUNMAP, addr, size, 0)
	if errno != 0 {
		return fmt.Errorf("platform: release %d bytes at %#x: %w", size, addr, errno)
	}
	return nil
}
