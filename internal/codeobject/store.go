package codeobject

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/peterjunpark/rocr-debug-agent/internal/dbgapi"
	"github.com/peterjunpark/rocr-debug-agent/internal/logflags"
)

// CodeObject is one GPU code object known to the runtime, lazily opened and
// lazily parsed: spec.md §3 "Lifecycle: created when the event pump observes
// a code-object list update; opened lazily before first inspection".
type CodeObject struct {
	ID          dbgapi.CodeObjectID
	LoadAddress uint64
	MemSize     uint64
	URI         string

	backing *os.File

	symbolsOnce sync.Once
	symbols     []symbolEntry

	debugInfoOnce sync.Once
	lines         []lineEntry
	ranges        []addrRange
}

// New builds an unopened CodeObject from a dbgapi code-object handle and
// its reported load address and URI (spec.md §3 CodeObject fields).
func New(id dbgapi.CodeObjectID, loadAddress uint64, uri string) *CodeObject {
	return &CodeObject{ID: id, LoadAddress: loadAddress, URI: uri}
}

// IsOpen reports whether Open has successfully populated the backing file.
func (co *CodeObject) IsOpen() bool { return co.backing != nil }

// Open resolves co.URI, reads the code-object bytes into a fresh anonymous
// backing file, and computes mem_size from the ELF PT_LOAD segments, per
// spec.md §4.2 open(). A resolution failure (unsupported protocol, short
// file, unreadable GPU memory) is logged as a warning and leaves the code
// object unopened rather than returning to a caller that would treat it as
// fatal.
func (co *CodeObject) Open() error {
	log := logflags.CodeObjectLogger()

	u, err := ParseURI(co.URI)
	if err != nil {
		log.Warnf("%v", err)
		return err
	}

	var buf []byte
	switch u.Protocol {
	case "file":
		buf, err = readFileRange(u)
	case "memory":
		if u.Offset == 0 || !u.HasSize || u.Size == 0 {
			err = fmt.Errorf("invalid uri %q: offset and size must be nonzero for memory", co.URI)
			break
		}
		var processID dbgapi.ProcessID
		processID, err = dbgapi.CodeObjectProcess(co.ID)
		if err != nil {
			break
		}
		buf = make([]byte, u.Size)
		var n int
		n, err = dbgapi.ReadGlobalMemory(processID, u.Offset, buf)
		if err == nil {
			buf = buf[:n]
		}
	}
	if err != nil {
		log.Warnf("could not open code object %q: %v", co.URI, err)
		return err
	}

	f, err := newBackingFile(co.URI)
	if err != nil {
		log.Warnf("could not create a temporary file for code object: %v", err)
		return err
	}

	if n, werr := f.Write(buf); werr != nil || n != len(buf) {
		f.Close()
		log.Warnf("could not write to the temporary file for %q", co.URI)
		return fmt.Errorf("short write to backing file for %q", co.URI)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return err
	}

	memSize, err := elfLoadSegmentsMemSize(f)
	if err != nil {
		log.Warnf("elf parse failed for %q: %v", co.URI, err)
		f.Close()
		return err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return err
	}

	co.backing = f
	co.MemSize = memSize
	return nil
}

// readFileRange implements the "file" protocol branch of open(): read
// [offset, offset+size) from disk, clamping size to the remainder of the
// file when it was not given explicitly.
func readFileRange(u URI) ([]byte, error) {
	if u.HasSize && u.Size == 0 {
		return nil, fmt.Errorf("invalid uri (explicit size=0)")
	}

	f, err := os.Open(u.Path)
	if err != nil {
		return nil, fmt.Errorf("could not open `%s'", u.Path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	fileLen := uint64(info.Size())

	size := u.Size
	if !u.HasSize {
		if fileLen < u.Offset {
			return nil, fmt.Errorf("invalid uri `%s' (file size < offset)", u.Path)
		}
		size = fileLen - u.Offset
	}

	buf := make([]byte, size)
	n, err := f.ReadAt(buf, int64(u.Offset))
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}

// newBackingFile creates the anonymous file code-object bytes are copied
// into: a close-on-exec memfd that allows seals where available, falling back to an
// unlinked O_TMPFILE descriptor under /tmp — spec.md §4.2's "prefer an
// in-memory anonymous file... fall back to an unlinked temp file".
func newBackingFile(uri string) (*os.File, error) {
	name := memfdName(uri)
	fd, err := unix.MemfdCreate(name, unix.MFD_ALLOW_SEALING|unix.MFD_CLOEXEC)
	if err == nil {
		return os.NewFile(uintptr(fd), name), nil
	}

	fd, err = unix.Open("/tmp", unix.O_TMPFILE|unix.O_RDWR, 0o666)
	if err != nil {
		return nil, fmt.Errorf("memfd_create and O_TMPFILE both failed: %w", err)
	}
	return os.NewFile(uintptr(fd), "/tmp"), nil
}

// memfdNameLimit mirrors NAME_MAX (255) minus the "memfd:" prefix
// memfd_create(2) adds to /proc/PID/fd entries.
const memfdNameLimit = 255 - len("memfd:")

// memfdName trims uri to fit memfdNameLimit bytes, keeping the protocol
// prefix and eliding the middle with "[...]" so the offset/size suffix
// (useful for debugging) survives truncation — grounded on the original's
// memfd_create name lambda in code_object.cpp:open().
func memfdName(uri string) string {
	if len(uri) <= memfdNameLimit {
		return uri
	}

	prefixLen := strings.Index(uri, "://")
	if prefixLen < 0 {
		prefixLen = 0
	} else {
		prefixLen += len("://")
	}
	const ellipsis = "[...]"
	keep := memfdNameLimit - prefixLen - len(ellipsis)
	if keep < 0 {
		keep = 0
	}
	return uri[:prefixLen] + ellipsis + uri[len(uri)-keep:]
}

// FindSymbol implements find_symbol(addr): a predecessor lookup into the
// (lazily loaded) symbol map, returning a demangled name.
func (co *CodeObject) FindSymbol(addr uint64) (name string, value, size uint64, ok bool) {
	co.symbolsOnce.Do(func() { co.loadSymbolsLocked() })
	return findSymbolIn(co.symbols, addr)
}

func (co *CodeObject) loadSymbolsLocked() {
	if !co.IsOpen() {
		return
	}
	syms, err := loadSymbolMap(co.backing, co.LoadAddress)
	if err != nil {
		logflags.CodeObjectLogger().Warnf("could not load symbol map for %q: %v", co.URI, err)
		return
	}
	co.symbols = syms
}

func (co *CodeObject) loadDebugInfoLocked() {
	if !co.IsOpen() {
		return
	}
	lines, ranges, err := loadDebugInfo(co.backing, co.LoadAddress)
	if err != nil {
		logflags.CodeObjectLogger().Warnf("could not load debug info for %q: %v", co.URI, err)
		return
	}
	co.lines = lines
	co.ranges = ranges
}

// Save copies the backing file's bytes into dir/<sanitized_uri>, replacing
// every ':', '/', '#', '?', '&', '=' with '_', per spec.md §4.2 save(dir).
func (co *CodeObject) Save(dir string) error {
	if !co.IsOpen() {
		return fmt.Errorf("code object %q is not opened", co.URI)
	}

	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(":/#?&=", r) {
			return '_'
		}
		return r
	}, co.URI)

	size, err := co.backing.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	buf := make([]byte, size)
	if _, err := co.backing.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if n, err := io.ReadFull(co.backing, buf); err != nil || int64(n) != size {
		return fmt.Errorf("short read of backing file for %q", co.URI)
	}

	out, err := os.Create(dir + "/" + name)
	if err != nil {
		return err
	}
	defer out.Close()

	n, err := out.Write(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return fmt.Errorf("short write saving %q to %s", co.URI, dir)
	}
	return out.Sync()
}
