// Package config loads server options from a redis.conf-style file, in the
// same line-oriented, directive-per-line format and forgiving parsing style
// as the teacher's configuration loader.
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every option the reactor, logger and metrics server need at
// startup.
type Config struct {
	Addr          string
	TickInterval  time.Duration
	SweepInterval time.Duration
	LogLevel      string
	MetricsAddr   string
	filepath      string
}

// Default returns the option set used when no config file is given.
func Default() *Config {
	return &Config{
		Addr:          "127.0.0.1:6379",
		TickInterval:  100 * time.Millisecond,
		SweepInterval: 100 * time.Millisecond,
		LogLevel:      "info",
		MetricsAddr:   "127.0.0.1:9121",
	}
}

// Load reads a redis.conf-style file and overlays its directives onto the
// defaults. A missing file is not an error - it logs a warning and returns
// the defaults, matching the teacher's tolerance for an absent config file.
func Load(filename string) *Config {
	c := Default()
	if filename == "" {
		return c
	}

	f, err := os.Open(filename)
	if err != nil {
		log.Printf("config: can't read %s, using defaults: %v", filename, err)
		return c
	}
	defer f.Close()

	c.filepath = filename

	s := bufio.NewScanner(f)
	for s.Scan() {
		parseLine(s.Text(), c)
	}
	if err := s.Err(); err != nil {
		log.Printf("config: error scanning %s: %v", filename, err)
	}
	return c
}

// parseLine applies one directive to c. Unknown directives are ignored;
// malformed values leave the prior setting in place rather than panicking -
// a line with too few fields is simply skipped.
func parseLine(line string, c *Config) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	args := strings.Fields(line)
	if len(args) < 2 {
		return
	}
	directive, value := args[0], args[1]

	switch directive {
	case "port":
		p, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("config: invalid port %q, keeping %s", value, c.Addr)
			return
		}
		host, _, _ := strings.Cut(c.Addr, ":")
		if host == "" {
			host = "127.0.0.1"
		}
		c.Addr = host + ":" + strconv.Itoa(p)

	case "bind":
		_, port, _ := strings.Cut(c.Addr, ":")
		if port == "" {
			port = "6379"
		}
		c.Addr = value + ":" + port

	case "tick-ms":
		ms, err := strconv.Atoi(value)
		if err != nil || ms <= 0 {
			log.Printf("config: invalid tick-ms %q, keeping default", value)
			return
		}
		c.TickInterval = time.Duration(ms) * time.Millisecond

	case "sweep-ms":
		ms, err := strconv.Atoi(value)
		if err != nil || ms <= 0 {
			log.Printf("config: invalid sweep-ms %q, keeping default", value)
			return
		}
		c.SweepInterval = time.Duration(ms) * time.Millisecond

	case "loglevel":
		c.LogLevel = value

	case "metrics-addr":
		c.MetricsAddr = value
	}
}
