// xlmerge - объединение нескольких xlsx-файлов по ключевой колонке.
//
// Usage:
//
//	xlmerge merge --config merge.yaml
//	xlmerge history list   [--db merged_history.db]
//	xlmerge history delete --id 3 [--files] [--db ...]
//	xlmerge history clear  [--files] [--db ...]
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "merge":
		err = runMerge(os.Args[2:])
	case "history":
		err = runHistory(os.Args[2:])
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  xlmerge merge --config <merge.yaml>")
	fmt.Fprintln(os.Stderr, "  xlmerge history list   [--db merged_history.db]")
	fmt.Fprintln(os.Stderr, "  xlmerge history delete --id <N> [--files] [--db ...]")
	fmt.Fprintln(os.Stderr, "  xlmerge history clear  [--files] [--db ...]")
}
