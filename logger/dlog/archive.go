package dlog

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Archiver moves the previous day's log files into a dated directory.
// While a run is in flight, writes divert to buffer files so the copy
// sees a stable input.
type Archiver struct {
	processing bool
}

func (a *Archiver) process() {
	Log.Info("Started log archive")
	a.processing = true
	defer func() { a.processing = false }()

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	archiveDir := "logs/" + yesterday

	tmp := archiveDir
	counter := 1
	err := os.Mkdir(archiveDir, 0755)
	for os.IsExist(err) {
		archiveDir = tmp + "-" + strconv.Itoa(counter)
		counter++
		err = os.Mkdir(archiveDir, 0755)
	}
	if err != nil {
		Log.Error("Failed to create archive directory", "dir", archiveDir, "error", err)
		return
	}

	dir, err := os.ReadDir("logs")
	if err != nil {
		Log.Error("Failed to read log directory", "error", err)
		return
	}

	for _, entry := range dir {
		if entry.Type() != 0 {
			continue
		}
		old, err := os.OpenFile("logs/"+entry.Name(), os.O_RDONLY, 0600)
		if err != nil {
			Log.Error("Failed to open file", "fileName", "logs/"+entry.Name(), "err", err)
			return
		}
		archived, err := os.OpenFile(archiveDir+"/"+entry.Name(), os.O_WRONLY|os.O_CREATE, 0600)
		if err != nil {
			Log.Error("Failed to open file", "fileName", archiveDir+"/"+entry.Name(), "err", err)
			return
		}
		written, err := copyFiles(archived, old)
		if err != nil {
			Log.Error("Failed to write log", "fileName", entry.Name(), "error", err)
			return
		}
		Log.Info("Copied log", "fileName", entry.Name(), "written", written)

		err = os.Truncate("logs/"+entry.Name(), 0)
		if err != nil {
			Log.Error("Failed to truncate file", "fileName", entry.Name(), "err", err)
			return
		}
	}
}

func copyFiles(writer io.Writer, input *os.File) (int, error) {
	stat, err := input.Stat()
	if err != nil {
		return 0, err
	}
	bytes := make([]byte, stat.Size())
	read, err := input.ReadAt(bytes, 0)
	if err != nil && read != int(stat.Size()) {
		return 0, err
	}
	if stat.Size() != int64(read) {
		return 0, fmt.Errorf("expected %d bytes, got %d", stat.Size(), read)
	}
	return writer.Write(bytes)
}

// BufferedFile is a file writer that diverts to a side buffer while the
// archiver is copying, then folds the buffer back in on the next write.
type BufferedFile struct {
	Archiver   *Archiver
	File       *os.File
	BufferFile *os.File
	buffered   bool
}

func (b *BufferedFile) Write(p []byte) (n int, err error) {
	if b.Archiver.processing {
		b.buffered = true
		_, err := b.BufferFile.Write(p)
		if err != nil {
			return 0, err
		}
		return len(p), nil
	}
	if b.buffered {
		b.buffered = false
		_, err := copyFiles(b.File, b.BufferFile)
		if err != nil {
			return 0, err
		}
		err = b.BufferFile.Truncate(0)
		if err != nil {
			return 0, err
		}
	}
	return b.File.Write(p)
}
