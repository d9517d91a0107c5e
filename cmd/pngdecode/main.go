// Command pngdecode decodes PNG images from the command line.
//
// Usage:
//
//	pngdecode info <file.png>        Print dimensions/colour type/gamma as JSON
//	pngdecode dec <file.png> -o out  Decode and re-encode via image/png
//	pngdecode batch <glob>           Decode every file matching a doublestar glob
//	pngdecode repl                   Read whitespace/quote-aware commands from stdin
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"image/png"
	"io"
	"log"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/shlex"

	"github.com/ernestoBayma/pngdecode"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "info":
		err = runInfo(os.Args[2:])
	case "dec":
		err = runDec(os.Args[2:])
	case "batch":
		err = runBatch(os.Args[2:])
	case "repl":
		err = runRepl()
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "pngdecode: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "pngdecode: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  pngdecode info <file.png>        Print PNG metadata as JSON
  pngdecode dec <file.png> -o out  Decode and re-encode via image/png
  pngdecode batch <glob>           Decode every file matching a glob pattern
  pngdecode repl                   Read commands from stdin

Use "-" as input to read from stdin, "-o -" to write to stdout.
`)
}

// openInput returns an io.ReadCloser for the given path. If path is "-",
// stdin is returned wrapped so that closing it leaves stdin open.
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// --- info ---

type infoJSON struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	ColorType  uint8   `json:"color_type"`
	BitDepth   uint8   `json:"bit_depth"`
	HasAlpha   bool    `json:"has_alpha"`
	HasPalette bool    `json:"has_palette"`
	Gamma      *uint32 `json:"gamma,omitempty"`
}

func runInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("info: missing input file\nUsage: pngdecode info <file.png>")
	}
	inputPath := args[0]

	in, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	feat, err := pngdecode.GetFeatures(in)
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}

	out := infoJSON{
		Width:      feat.Width,
		Height:     feat.Height,
		ColorType:  uint8(feat.ColorType),
		BitDepth:   feat.BitDepth,
		HasAlpha:   feat.HasAlpha,
		HasPalette: feat.HasPalette,
		Gamma:      feat.Gamma,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// --- dec ---

func runDec(args []string) error {
	fs := flag.NewFlagSet("dec", flag.ContinueOnError)
	output := fs.String("o", "", `output path (default: <input>.out.png, "-" for stdout)`)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("dec: missing input file\nUsage: pngdecode dec <file.png> -o <out.png>")
	}
	inputPath := fs.Arg(0)
	// Flags may also follow the input path.
	if err := fs.Parse(fs.Args()[1:]); err != nil {
		return err
	}

	in, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	img, err := pngdecode.Decode(in)
	if err != nil {
		return fmt.Errorf("dec: %w", err)
	}

	outputPath := *output
	if outputPath == "-" {
		return png.Encode(os.Stdout, img)
	}
	if outputPath == "" {
		outputPath = inputPath + ".out.png"
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		os.Remove(outputPath)
		return fmt.Errorf("dec: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(outputPath)
		return err
	}

	fmt.Fprintf(os.Stderr, "Decoded %s -> %s\n", inputPath, outputPath)
	return nil
}

// --- batch ---

func runBatch(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("batch: missing glob pattern\nUsage: pngdecode batch <glob>")
	}
	pattern := args[0]

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("batch: no files matched %q", pattern)
	}

	var failures int
	for _, path := range matches {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", path, err)
			failures++
			continue
		}
		_, err = pngdecode.Decode(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", path, err)
			failures++
			continue
		}
		fmt.Printf("OK   %s\n", path)
	}

	fmt.Printf("%d/%d decoded successfully\n", len(matches)-failures, len(matches))
	if failures > 0 {
		return fmt.Errorf("batch: %d file(s) failed to decode", failures)
	}
	return nil
}

// --- repl ---

func runRepl() error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprint(os.Stderr, "pngdecode> ")
	for scanner.Scan() {
		line := scanner.Text()
		args, err := shlex.Split(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pngdecode: parsing line: %v\n", err)
			fmt.Fprint(os.Stderr, "pngdecode> ")
			continue
		}
		if len(args) == 0 {
			fmt.Fprint(os.Stderr, "pngdecode> ")
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			return nil
		}

		if err := dispatch(args); err != nil {
			fmt.Fprintf(os.Stderr, "pngdecode: %v\n", err)
		}
		fmt.Fprint(os.Stderr, "pngdecode> ")
	}
	return scanner.Err()
}

func dispatch(args []string) error {
	switch args[0] {
	case "info":
		return runInfo(args[1:])
	case "dec":
		return runDec(args[1:])
	case "batch":
		return runBatch(args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func init() {
	log.SetFlags(0)
}
