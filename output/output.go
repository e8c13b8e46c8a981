// Package output writes an encoded instruction stream to its final form:
// a flat, little-endian sequence of 32-bit machine words. The on-disk
// layout and open flags are identical for every target; only the file's
// permission bits vary between the unix and baremetal targets.
package output

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Target names the deployment target for the emitted file's permission
// bits. The machine code itself does not differ between targets.
type Target int

const (
	// Unix produces a file executable by its owner only
	// (O_WRONLY|O_CREAT|O_TRUNC, mode 0700).
	Unix Target = iota
	// Baremetal produces a plain read/write image file with no execute
	// bit — it is meant to be linked into a boot image, not run
	// directly by a host kernel.
	Baremetal
)

// ParseTarget maps a -target flag value ("unix" or "baremetal") to a
// Target. ok is false for anything else.
func ParseTarget(name string) (Target, bool) {
	switch name {
	case "unix":
		return Unix, true
	case "baremetal":
		return Baremetal, true
	default:
		return 0, false
	}
}

func permissionsFor(target Target) os.FileMode {
	switch target {
	case Unix:
		return 0700 // S_IRUSR|S_IWUSR|S_IXUSR
	default:
		return 0600
	}
}

// WriteFile opens path fresh (truncating any existing contents) with the
// permission bits appropriate to target, and writes words as flat
// little-endian machine code.
func WriteFile(path string, words []uint32, target Target) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, permissionsFor(target))
	if err != nil {
		return fmt.Errorf("opening output file: %w", err)
	}
	defer f.Close()

	if err := Write(f, words); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Write emits words as flat little-endian machine code to w. This is the
// path the API server and tests use, where there is no filesystem target
// to open — only a destination io.Writer.
func Write(w io.Writer, words []uint32) error {
	buf := make([]byte, 4)
	for _, word := range words {
		binary.LittleEndian.PutUint32(buf, word)
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
