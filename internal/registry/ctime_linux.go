package registry

import (
	"os"
	"syscall"
	"time"
)

// createdAt uses the inode change time, falling back to the mod time.
func createdAt(info os.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Ctim.Unix())
	}
	return info.ModTime()
}
