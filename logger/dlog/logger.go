// Package dlog wires the process-wide logger: a colorized pretty
// handler on stdout plus text and JSON file handlers, fanned out with
// slog-multi. Log files rotate into dated directories on a cron
// schedule.
package dlog

import (
	"log/slog"
	"os"

	"github.com/robfig/cron/v3"
	slogmulti "github.com/samber/slog-multi"
)

const defaultArchiveCron = "0 0 * * *"

var Log *slog.Logger
var archiver = &Archiver{}

func init() {
	setup()
	Log = createLogger()

	spec := os.Getenv("ARCHIVE_CRON")
	if spec == "" {
		spec = defaultArchiveCron
	}
	c := cron.New()
	entryID, err := c.AddFunc(spec, archiver.process)
	if err != nil {
		panic(err)
	}
	c.Start()
	Info("Created archive cron", "entryID", entryID, "spec", spec)
}

func Info(msg string, args ...any) {
	Log.Info(msg, args...)
}
func Error(msg string, args ...any) {
	Log.Error(msg, args...)
}
func Warn(msg string, args ...any) {
	Log.Warn(msg, args...)
}
func Debug(msg string, args ...any) {
	Log.Debug(msg, args...)
}

func setup() {
	err := os.MkdirAll("logs", os.ModePerm)
	if err != nil {
		panic(err)
	}
	err = os.MkdirAll("logs/buffered", os.ModePerm)
	if err != nil {
		panic(err)
	}
}

func createLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: true,
	}

	return slog.New(slogmulti.Fanout(
		getPrettyHandler(archiver, opts),
		getTextHandler(archiver, opts),
		getJsonHandler(archiver, opts),
	))
}

func getJsonHandler(archiver *Archiver, opts *slog.HandlerOptions) slog.Handler {
	fileJson, err := os.OpenFile("logs/default.json", os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		panic(err)
	}
	jsonBufferFile, err := os.OpenFile("logs/buffered/default.json", os.O_APPEND|os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		panic(err)
	}
	return slog.NewJSONHandler(&BufferedFile{
		Archiver:   archiver,
		File:       fileJson,
		BufferFile: jsonBufferFile,
	}, opts)
}

func getTextHandler(archiver *Archiver, opts *slog.HandlerOptions) slog.Handler {
	fileText, err := os.OpenFile("logs/default.txt", os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		panic(err)
	}
	textBufferFile, err := os.OpenFile("logs/buffered/default.txt", os.O_APPEND|os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		panic(err)
	}
	return slog.NewTextHandler(&BufferedFile{
		Archiver:   archiver,
		File:       fileText,
		BufferFile: textBufferFile,
	}, opts)
}

func getPrettyHandler(archiver *Archiver, opts *slog.HandlerOptions) *PrettyHandler {
	filePretty, err := os.OpenFile("logs/pretty.log", os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		panic(err)
	}
	prettyBufferFile, err := os.OpenFile("logs/buffered/pretty.log", os.O_APPEND|os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		panic(err)
	}

	return newPrettyHandler(DualWriter{
		Stdout: os.Stdout,
		File: &BufferedFile{
			Archiver:   archiver,
			File:       filePretty,
			BufferFile: prettyBufferFile,
		},
	}, opts)
}
