package stream

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/holmberd/go-bufpool/internal/testutils"
)

func TestReader(t *testing.T) {
	t.Run("reads content across block boundaries", func(t *testing.T) {
		s := newTestStream(t, &MockPool{}, testConfig())
		content := pattern(testutils.MockBlockSize*2 + 33)
		s.Write(content)

		r, err := s.Reader()
		if err != nil {
			t.Fatalf("Reader failed: %v", err)
		}
		defer r.Close()

		got := make([]byte, len(content))
		n, err := r.Read(got)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if n != len(content) || !bytes.Equal(got, content) {
			t.Error("read content does not match written content")
		}
		if _, err := r.Read(make([]byte, 1)); err != io.EOF {
			t.Errorf("expected io.EOF at end of content, got %v", err)
		}
	})

	t.Run("partial read at end returns EOF", func(t *testing.T) {
		s := newTestStream(t, &MockPool{}, testConfig())
		s.Write(pattern(10))

		r, _ := s.Reader()
		defer r.Close()
		buf := make([]byte, 16)
		n, err := r.Read(buf)
		if n != 10 || err != io.EOF {
			t.Errorf("expected (10, io.EOF), got (%d, %v)", n, err)
		}
	})

	t.Run("read byte walks the chain", func(t *testing.T) {
		s := newTestStream(t, &MockPool{}, testConfig())
		content := pattern(testutils.MockBlockSize + 2)
		s.Write(content)

		r, _ := s.Reader()
		defer r.Close()
		for i, want := range content {
			b, err := r.ReadByte()
			if err != nil {
				t.Fatalf("ReadByte at %d failed: %v", i, err)
			}
			if b != want {
				t.Fatalf("byte %d: got %#x, want %#x", i, b, want)
			}
		}
		if _, err := r.ReadByte(); err != io.EOF {
			t.Errorf("expected io.EOF past the end, got %v", err)
		}
	})

	t.Run("seek", func(t *testing.T) {
		s := newTestStream(t, &MockPool{}, testConfig())
		content := pattern(testutils.MockBlockSize + 50)
		s.Write(content)

		r, _ := s.Reader()
		defer r.Close()

		off, err := r.Seek(int64(testutils.MockBlockSize), io.SeekStart)
		if err != nil || off != int64(testutils.MockBlockSize) {
			t.Fatalf("SeekStart: got (%d, %v)", off, err)
		}
		b, _ := r.ReadByte()
		if b != content[testutils.MockBlockSize] {
			t.Error("read after SeekStart returned the wrong byte")
		}

		off, err = r.Seek(9, io.SeekCurrent)
		if err != nil || off != int64(testutils.MockBlockSize)+10 {
			t.Fatalf("SeekCurrent: got (%d, %v)", off, err)
		}

		off, err = r.Seek(-1, io.SeekEnd)
		if err != nil || off != s.Len()-1 {
			t.Fatalf("SeekEnd: got (%d, %v)", off, err)
		}
		b, _ = r.ReadByte()
		if b != content[len(content)-1] {
			t.Error("read after SeekEnd returned the wrong byte")
		}

		if _, err := r.Seek(-1, io.SeekStart); err == nil {
			t.Error("expected an error seeking before the start")
		}
		if _, err := r.Seek(0, 42); err == nil {
			t.Error("expected an error for an invalid whence")
		}
	})

	t.Run("reads from the consolidated buffer", func(t *testing.T) {
		s := newTestStream(t, &MockPool{}, testConfig())
		content := pattern(testutils.MockBlockSize * 2)
		s.Write(content)
		if _, err := s.Consolidate(); err != nil {
			t.Fatalf("Consolidate failed: %v", err)
		}

		r, err := s.Reader()
		if err != nil {
			t.Fatalf("Reader failed: %v", err)
		}
		defer r.Close()
		got := make([]byte, len(content))
		if _, err := r.Read(got); err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if !bytes.Equal(got, content) {
			t.Error("consolidated read does not match written content")
		}
	})

	t.Run("disposed stream invalidates readers", func(t *testing.T) {
		s := newTestStream(t, &MockPool{}, testConfig())
		s.Write(pattern(10))

		r, _ := s.Reader()
		s.Dispose()
		if _, err := r.Read(make([]byte, 1)); !errors.Is(err, ErrDisposed) {
			t.Errorf("expected ErrDisposed, got %v", err)
		}
		if _, err := r.Seek(0, io.SeekStart); !errors.Is(err, ErrDisposed) {
			t.Errorf("Seek: expected ErrDisposed, got %v", err)
		}
	})

	t.Run("close returns the reader to the pool", func(t *testing.T) {
		s := newTestStream(t, &MockPool{}, testConfig())
		s.Write(pattern(10))

		r, _ := s.Reader()
		r.ReadByte()
		if err := r.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		r2, _ := s.Reader()
		defer r2.Close()
		if r2.Offset() != 0 {
			t.Error("expected a pooled reader to be reset to offset 0")
		}
	})

	t.Run("double close pools the reader once", func(t *testing.T) {
		s := newTestStream(t, &MockPool{}, testConfig())
		s.Write(pattern(10))

		r, _ := s.Reader()
		if err := r.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		if err := r.Close(); err != nil {
			t.Fatalf("second Close failed: %v", err)
		}

		// Only one pooled instance may exist, so two readers acquired
		// back to back must be distinct.
		r1, _ := s.Reader()
		r2, _ := s.Reader()
		defer r1.Close()
		defer r2.Close()
		if r1 == r2 {
			t.Error("expected distinct reader instances after a double close")
		}
	})
}
