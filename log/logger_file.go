package log

import (
	"errors"
	"os"
)

var errFileNameUnset = errors.New("log file name unset")

// Write implements the io.Writer interface, opening the file lazily
func (f *fileWriter) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.output == nil {
		if err := f.open(false); err != nil {
			return 0, err
		}
	}
	if f.MaxSize > 0 && f.size+int64(len(p)) > f.MaxSize*1024*1024 {
		if err := f.output.Close(); err != nil {
			return 0, err
		}
		if err := f.open(true); err != nil {
			return 0, err
		}
	}
	n, err := f.output.Write(p)
	f.size += int64(n)
	return n, err
}

func (f *fileWriter) open(truncate bool) error {
	if f.FileName == "" {
		return errFileNameUnset
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if truncate {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	fh, err := os.OpenFile(f.FileName, flags, 0o640)
	if err != nil {
		return err
	}
	info, err := fh.Stat()
	if err != nil {
		_ = fh.Close()
		return err
	}
	f.size = info.Size()
	f.output = fh
	return nil
}

// Close closes the underlying file
func (f *fileWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.output == nil {
		return nil
	}
	err := f.output.Close()
	f.output = nil
	return err
}
