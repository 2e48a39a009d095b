// Command entityrouter runs the dynaschema request router over stdio: one
// JSON command per line on stdin, one JSON envelope per line on stdout.
//
// Usage:
//
//	entityrouter [flags]
//
// Flags:
//
//	-base-dir string   Base directory for script sources and templates
//	-verbose           Verbose diagnostic logging
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dynaschema/dynaschema"
	"github.com/dynaschema/dynaschema/script"
)

var (
	baseDir = flag.String("base-dir", ".", "base directory for script sources and templates")
	verbose = flag.Bool("verbose", false, "verbose diagnostic logging")
)

func main() {
	flag.Parse()

	engine := dynaschema.NewEngine(nil)
	bridge := script.NewBridge(engine, script.NewOSFileSystem(*baseDir))
	engine.SetScriptRunner(bridge)
	router := dynaschema.NewRouter(dynaschema.NewFacade(engine))

	if *verbose {
		log.Printf("entityrouter starting, base-dir=%s", *baseDir)
	}

	if err := run(router, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(router *dynaschema.Router, in *os.File, out *os.File) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	writer := bufio.NewWriter(out)
	defer writer.Flush()

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		response := router.Dispatch(line)
		if _, err := writer.WriteString(response); err != nil {
			return err
		}
		if err := writer.WriteByte('\n'); err != nil {
			return err
		}
		if err := writer.Flush(); err != nil {
			return err
		}
	}
	return scanner.Err()
}
