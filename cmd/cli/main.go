package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/dkotenko/clipbridge/pkg/clipboard"
)

type action struct {
	copyPaths bool
	paste     bool
	clear     bool
	hasImage  bool

	savePNG  string
	saveJPEG string
	quality  float64
	putImage string

	verbose  bool
	showHelp bool
}

func parseFlags() action {
	var act action

	flag.BoolVarP(&act.copyPaths, "copy", "c", false, "Copy the file paths given as arguments")
	flag.BoolVarP(&act.paste, "paste", "p", false, "Print the file paths currently on the clipboard")
	flag.BoolVar(&act.clear, "clear", false, "Clear the clipboard")
	flag.BoolVar(&act.hasImage, "has-image", false, "Exit 0 if the clipboard holds an image")

	flag.StringVar(&act.savePNG, "save-png", "", "Save the clipboard image to this path as PNG")
	flag.StringVar(&act.saveJPEG, "save-jpeg", "", "Save the clipboard image to this path as JPEG")
	flag.Float64VarP(&act.quality, "quality", "q", 0.9, "JPEG compression factor in [0.0, 1.0]")
	flag.StringVar(&act.putImage, "put-image", "", "Place this image file onto the clipboard")

	flag.BoolVarP(&act.verbose, "verbose", "v", false, "Verbose logs")
	flag.BoolVarP(&act.showHelp, "help", "h", false, "Show help")

	flag.Parse()

	return act
}

func main() {
	act := parseFlags()

	if act.showHelp {
		flag.Usage()
		return
	}

	logger := initLogger(act.verbose)
	clip := clipboard.New(logger)

	switch {
	case act.copyPaths:
		copyFiles(clip, logger, flag.Args())

	case act.paste:
		for _, path := range clip.ReadFilePaths() {
			fmt.Println(path)
		}

	case act.clear:
		clip.Clear()

	case act.hasImage:
		if !clip.HasImage() {
			os.Exit(1)
		}

	case act.savePNG != "":
		if !clip.SaveImageAsPNG(act.savePNG) {
			logger.Fatal().Str("path", act.savePNG).Msg("no clipboard image saved")
		}

	case act.saveJPEG != "":
		if !clip.SaveImageAsJPEG(act.saveJPEG, act.quality) {
			logger.Fatal().Str("path", act.saveJPEG).Msg("no clipboard image saved")
		}

	case act.putImage != "":
		if !clip.PutImage(act.putImage) {
			logger.Fatal().Str("path", act.putImage).Msg("failed to put image")
		}

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func copyFiles(clip *clipboard.Clipboard, logger zerolog.Logger, args []string) {
	if len(args) == 0 {
		logger.Fatal().Msg("no paths to copy")
	}

	paths := make([]string, 0, len(args))

	var total uint64
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			logger.Warn().Err(err).Str("path", arg).Msg("skipping path")
			continue
		}

		if info, err := os.Stat(abs); err == nil {
			total += uint64(info.Size())
		}

		paths = append(paths, abs)
	}

	clip.WriteFilePaths(paths)

	logger.Info().
		Int("files", len(paths)).
		Str("size", humanize.Bytes(total)).
		Msg("copied")
}

func initLogger(verbose bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	if verbose {
		zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
			short := file
			for i := len(file) - 1; i > 0; i-- {
				if file[i] == '/' {
					short = file[i+1:]
					break
				}
			}
			file = short
			return fmt.Sprintf("%s:%d", file, line)
		}
		return zerolog.New(output).
			Level(zerolog.TraceLevel).
			With().
			Timestamp().
			Caller().
			Logger()
	}

	return zerolog.New(output).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Logger()
}
