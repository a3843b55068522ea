// solvereader prints how many rows of a solve log survive filtering, per weekday.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/iafilius/SolveTrends/src/analysis"
	"github.com/iafilius/SolveTrends/src/config"
	"github.com/iafilius/SolveTrends/src/types"
)

func main() {
	var file string
	var since string
	flag.StringVar(&file, "file", "data.csv", "Path to the solve log CSV")
	flag.StringVar(&since, "since", "", "Optional YYYY-MM-DD; only count solves since this date")
	flag.Parse()
	records, err := analysis.LoadSolveLog(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	dataset := analysis.Filter(records)
	if since != "" {
		t, err := config.ParseSplitDate(since)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(2)
		}
		_, dataset = analysis.SplitAt(dataset, t)
	}
	total := map[types.Weekday]int{}
	for _, r := range records {
		total[r.Weekday]++
	}
	valid := map[types.Weekday]int{}
	for _, r := range dataset {
		valid[r.Weekday]++
	}
	fmt.Printf("Total rows: %d, valid: %d\n", len(records), len(dataset))
	for _, d := range types.Weekdays {
		fmt.Printf("%s: %d of %d\n", d, valid[d], total[d])
	}
}
