package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"mathmate/internal/apiclient"
	"mathmate/internal/config"
)

func main() {
	server := flag.String("server", config.GetEnv("MATHMATE_SERVER", "http://127.0.0.1:5001"), "mathmate service base URL")
	timeout := flag.Duration("timeout", 5*time.Second, "HTTP timeout")
	flag.Parse()

	err := apiclient.Run(context.Background(), os.Stdin, os.Stdout, apiclient.Config{
		ServerURL:   *server,
		HTTPTimeout: *timeout,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
