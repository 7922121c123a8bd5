//go:build !unix

package lock

// processAlive cannot probe other processes here, so lock files are judged
// by age alone.
func processAlive(pid int) bool {
	return false
}
