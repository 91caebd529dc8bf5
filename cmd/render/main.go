// Command render prints the forecast report for a locality document saved on
// disk, without fetching or dispatching anything. It is useful for checking a
// document that failed to map, or previewing report changes.
//
// Usage:
//
//	go run ./cmd/render -file localidad_28079.xml
//	go run ./cmd/render -file converted.xml -encoding utf8
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/meteo-forecast-etl/internal/adapter/aemet"
	"github.com/couchcryptid/meteo-forecast-etl/internal/domain"
)

func main() {
	file := flag.String("file", "", "path to an AEMET locality XML document")
	encoding := flag.String("encoding", "latin9", "document byte encoding: latin9 or utf8")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*file, *encoding); code != 0 {
		os.Exit(code)
	}
}

func run(path, encoding string) int {
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read document: %v\n", err)
		return 1
	}

	var text string
	switch encoding {
	case "latin9":
		text, err = aemet.DecodeLatin9(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			return 1
		}
	case "utf8":
		text = string(raw)
	default:
		fmt.Fprintf(os.Stderr, "FATAL: unknown encoding %q (want latin9 or utf8)\n", encoding)
		return 1
	}

	forecast, err := domain.ParseForecast(text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	fmt.Print(domain.RenderReport(forecast))
	return 0
}
