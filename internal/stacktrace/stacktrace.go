// Package stacktrace captures and renders call stacks for pool
// diagnostics. Streams are created and disposed from a small set of call
// sites, so rendered traces are cached by a hash of their program
// counters and each distinct site is formatted only once.
package stacktrace

import (
	"encoding/binary"
	"runtime"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/valyala/bytebufferpool"
)

const maxFrames = 32

var (
	mu    sync.RWMutex
	cache = map[uint64]string{}
)

// Capture returns the rendered call stack of the caller, skipping skip
// frames above it. The hot path of a previously seen call site is a hash
// and a read-locked map lookup; formatting happens once per site.
func Capture(skip int) string {
	var pcs [maxFrames]uintptr
	n := runtime.Callers(skip+2, pcs[:]) // +2 skips runtime.Callers and Capture.
	if n == 0 {
		return ""
	}
	key := hashFrames(pcs[:n])

	mu.RLock()
	s, ok := cache[key]
	mu.RUnlock()
	if ok {
		return s
	}

	s = render(pcs[:n])
	mu.Lock()
	cache[key] = s
	mu.Unlock()
	return s
}

func hashFrames(pcs []uintptr) uint64 {
	var d xxhash.Digest
	d.Reset()
	var buf [8]byte
	for _, pc := range pcs {
		binary.LittleEndian.PutUint64(buf[:], uint64(pc))
		d.Write(buf[:])
	}
	return d.Sum64()
}

func render(pcs []uintptr) string {
	b := bytebufferpool.Get()
	defer bytebufferpool.Put(b)

	frames := runtime.CallersFrames(pcs)
	for {
		frame, more := frames.Next()
		if frame.Function != "" {
			b.WriteString(frame.Function)
			b.WriteString("\n\t")
			b.WriteString(frame.File)
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(frame.Line))
			b.WriteByte('\n')
		}
		if !more {
			break
		}
	}
	return b.String()
}
