// Command inspect dumps an offline event log database to stdout. Useful
// for post-mortem review of logs pulled off a device.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"bmcd/pkg/eventlog"
	"bmcd/pkg/logger"
)

func main() {
	var (
		path   string
		limit  int
		asJSON bool
	)
	flag.StringVar(&path, "db", "", "event log database path")
	flag.IntVar(&limit, "limit", 0, "maximum entries to print (0 = all)")
	flag.BoolVar(&asJSON, "json", false, "emit one JSON object per line")
	flag.Parse()
	if path == "" {
		fmt.Fprintln(os.Stderr, "--db required")
		os.Exit(2)
	}

	logger.Init("error")
	if err := eventlog.Open(path); err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", path, err)
		os.Exit(1)
	}
	defer func() { _ = eventlog.Close() }()

	if asJSON {
		evs, err := eventlog.List(limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "list events: %v\n", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		for _, ev := range evs {
			if err := enc.Encode(ev); err != nil {
				fmt.Fprintf(os.Stderr, "encode event %s: %v\n", ev.ID, err)
				os.Exit(1)
			}
		}
		return
	}

	out, err := eventlog.ExportText(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "export events: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(out)
}
