package platform

import (
	"math/bits"
	"os"
	"sync"
	"unsafe"
)

const is64bit = unsafe.Sizeof(uintptr(0)) == 8

var (
	pageSizeLog2Once sync.Once
	pageSizeLog2     int
)

// PageSizeLog2 returns log2 of the platform page size (a collaborator
// contract the table package relies on to align commit/decommit ranges).
func PageSizeLog2() int {
	pageSizeLog2Once.Do(func() {
		pageSizeLog2 = bits.Len(uint(os.Getpagesize())) - 1
	})
	return pageSizeLog2
}
