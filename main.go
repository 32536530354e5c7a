package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"mailprobe/checks"
	"mailprobe/config"
	"mailprobe/report"
	"mailprobe/verifier"
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	address := flag.Arg(0)

	logger := logrus.New()

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if level, err := logrus.ParseLevel(config.AppConfig.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	// Malformed input is a usage error, caught before any network activity
	if _, _, err := verifier.SplitAddress(address); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", prog(), err)
		usage()
		os.Exit(2)
	}

	v := verifier.New()
	v.Resolver = verifier.NewCachingResolver(config.AppConfig.DNSTimeout)
	v.Dialer = &net.Dialer{Timeout: config.AppConfig.ConnectTimeout}
	v.HeloDomain = config.AppConfig.HeloDomain
	v.FromEmail = config.AppConfig.FromEmail
	v.Port = config.AppConfig.SMTPPort
	v.SessionTimeout = config.AppConfig.SessionTimeout
	v.Logger = logger

	battery := checks.Default(v, config.AppConfig.SkipWhois)
	result := report.Run(context.Background(), address, battery)
	result.Print(os.Stdout)

	// The classification is the answer, not an error condition, so any
	// completed probe exits 0.
}

func prog() string {
	return filepath.Base(os.Args[0])
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: %s <email-address>\n\n", prog())
	fmt.Fprintln(out, "Probes an email address for deliverability: offline syntax checks, MX and")
	fmt.Fprintln(out, "A record lookups, WHOIS, and an SMTP RCPT TO probe against the domain's")
	fmt.Fprintln(out, "most-preferred mail exchanger. No mail is ever sent.")
	flag.PrintDefaults()
}
