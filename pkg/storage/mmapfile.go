package storage

import (
	"encoding/binary"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// initialFileSize is the size every backing file starts at: a single 1 MiB
// page, per §6 of the on-disk format ("files... grow geometrically" from an
// initial 1 MiB page).
const initialFileSize = 1 << 20

// headerSize is the width of the leading "next id / next free address"
// counter present in every backing file.
const headerSize = 4

// mappedFile is a growable, writable memory-mapped region backing one of the
// three storage files. Unlike the teacher's read-only
// golang.org/x/exp/mmap.ReaderAt (used for immutable LSM SSTables), this
// engine appends and updates records in place, so the mapping must be
// writable and must support unmap -> extend -> remap growth.
type mappedFile struct {
	file *os.File
	data []byte
	size int64
}

// openMappedFile opens (creating if absent) the file at path, initializing a
// fresh file to initialFileSize with the header counter set to 1.
func openMappedFile(path string) (*mappedFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	size := info.Size()
	fresh := size == 0
	if fresh {
		size = initialFileSize
		if err := f.Truncate(size); err != nil {
			f.Close()
			return nil, err
		}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}

	mf := &mappedFile{file: f, data: data, size: size}
	if fresh {
		binary.BigEndian.PutUint32(mf.data[0:4], 1)
	}
	return mf, nil
}

// ensure grows the mapping so that offsets up to (exclusive) need are valid,
// per §4.1's growth formula: extend by 2*(requested-size) + size/2 zeroed
// bytes, flush, remap.
func (m *mappedFile) ensure(need int64) error {
	if need <= m.size {
		return nil
	}

	add := 2*(need-m.size) + m.size/2
	newSize := m.size + add

	if err := unix.Munmap(m.data); err != nil {
		return fmt.Errorf("unmap %s: %w", m.file.Name(), err)
	}
	if err := m.file.Truncate(newSize); err != nil {
		return fmt.Errorf("extend %s: %w", m.file.Name(), err)
	}
	if err := m.file.Sync(); err != nil {
		return fmt.Errorf("flush %s: %w", m.file.Name(), err)
	}

	data, err := unix.Mmap(int(m.file.Fd()), 0, int(newSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("remap %s: %w", m.file.Name(), err)
	}

	m.data = data
	m.size = newSize
	return nil
}

func (m *mappedFile) readUint32(off int64) (uint32, error) {
	if off < 0 || off+4 > m.size {
		return 0, fmt.Errorf("%w: read past end of %s", ErrTruncatedFile, m.file.Name())
	}
	return binary.BigEndian.Uint32(m.data[off : off+4]), nil
}

func (m *mappedFile) writeUint32(off int64, v uint32) error {
	if err := m.ensure(off + 4); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(m.data[off:off+4], v)
	return nil
}

// readAt returns a copy of n bytes starting at off.
func (m *mappedFile) readAt(off int64, n int64) ([]byte, error) {
	if off < 0 || off+n > m.size {
		return nil, fmt.Errorf("%w: read past end of %s", ErrTruncatedFile, m.file.Name())
	}
	out := make([]byte, n)
	copy(out, m.data[off:off+n])
	return out, nil
}

// writeAt copies b into the mapping starting at off, growing first if needed.
func (m *mappedFile) writeAt(off int64, b []byte) error {
	if err := m.ensure(off + int64(len(b))); err != nil {
		return err
	}
	copy(m.data[off:off+int64(len(b))], b)
	return nil
}

func (m *mappedFile) header() (uint32, error) {
	return m.readUint32(0)
}

func (m *mappedFile) setHeader(v uint32) error {
	return m.writeUint32(0, v)
}

func (m *mappedFile) flush() error {
	return unix.Msync(m.data, unix.MS_SYNC)
}

func (m *mappedFile) close() error {
	if err := unix.Munmap(m.data); err != nil {
		m.file.Close()
		return err
	}
	return m.file.Close()
}
