package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/hamed0406/sitewatch/internal/domain"
)

func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}
	key := flag.String("key", os.Getenv("API_KEY"), "API key sent as X-API-Key")
	flag.Parse()

	req, err := http.NewRequest(http.MethodGet, strings.TrimRight(api, "/")+"/api/sites", nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Invalid API_BASE:", err)
		os.Exit(1)
	}
	if *key != "" {
		req.Header.Set("X-API-Key", *key)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error contacting API:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintln(os.Stderr, "API returned status:", resp.Status)
		os.Exit(1)
	}

	var recs domain.Records
	if err := json.NewDecoder(resp.Body).Decode(&recs); err != nil {
		fmt.Fprintln(os.Stderr, "Bad response:", err)
		os.Exit(1)
	}
	printTable(os.Stdout, recs)
}

func printTable(out io.Writer, recs domain.Records) {
	names := make([]string, 0, len(recs))
	for n := range recs {
		names = append(names, n)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SITE\tSTATUS\tUPTIME\tLATENCY\tSSL\tLAST CHECK\tERROR")
	for _, n := range names {
		r := recs[n]
		status := "DOWN"
		if r.Online {
			status = "UP"
		}
		latency := "-"
		if r.Latency != nil {
			latency = fmt.Sprintf("%dms", *r.Latency)
		}
		errText := ""
		if r.Error != nil {
			errText = *r.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f%%\t%s\t%s\t%s\t%s\n",
			n, status, r.Uptime, latency, r.SSLDaysRemaining, r.LastCheck, errText)
	}
	_ = tw.Flush()
}
