// Package disk reports local disk capacity.
package disk

import (
	"fmt"
	"geo-upload/internal/core/port"

	"golang.org/x/sys/unix"
)

// SpaceProbe reads free space with statfs
type SpaceProbe struct{}

var _ port.SpaceProbe = SpaceProbe{}

func NewSpaceProbe() SpaceProbe {
	return SpaceProbe{}
}

// FreeBytes returns the bytes available to unprivileged users under path
func (SpaceProbe) FreeBytes(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}
