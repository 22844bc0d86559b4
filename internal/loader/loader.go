// Package loader reads QXDM-style text log exports into parsed line sequences.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/setevik/rfkpi/internal/logline"
)

// timestampLayout is the millisecond-resolution timestamp format used by
// QXDM text exports, e.g. "2026-02-03 10:15:23.456".
const timestampLayout = "2006-01-02 15:04:05.000"

// lineRe matches a well-formed log line: timestamp, bracketed layer tag, message.
var lineRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3})\s+\[(\w+)\]\s+(.+)$`)

// Log holds an ordered sequence of parsed lines plus a count of input
// lines that were dropped as malformed.
type Log struct {
	Lines     []logline.Line
	Malformed int
}

// Parse parses a single raw line. The second return is false if the line
// is empty or does not match the expected format; no error is raised for
// the expected "line doesn't match" case.
func Parse(raw string) (logline.Line, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return logline.Line{}, false
	}

	m := lineRe.FindStringSubmatch(raw)
	if m == nil {
		return logline.Line{}, false
	}

	ts, err := time.Parse(timestampLayout, m[1])
	if err != nil {
		return logline.Line{}, false
	}

	return logline.Line{
		Timestamp: ts,
		Layer:     logline.Layer(m[2]),
		Message:   m[3],
	}, true
}

// Load reads raw log text from r, one event per line. Malformed lines are
// skipped and counted, never fatal; a parse failure on one line must not
// abort processing of subsequent lines.
func Load(r io.Reader) (*Log, error) {
	log := &Log{}

	scanner := bufio.NewScanner(r)
	// QXDM message payloads can be long; increase buffer to 1MB.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		raw := scanner.Text()
		if strings.TrimSpace(raw) == "" {
			continue
		}

		line, ok := Parse(raw)
		if !ok {
			log.Malformed++
			slog.Debug("skipping unparseable log line", "line", raw)
			continue
		}
		log.Lines = append(log.Lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}
	return log, nil
}

// LoadFile opens and fully reads a log export at path. Files ending in
// ".gz" are decompressed transparently. "-" reads from stdin.
func LoadFile(path string) (*Log, error) {
	if path == "-" {
		return Load(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening gzip log %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	return Load(r)
}

// ByLayer returns the ordered sub-sequence of lines for the given layer.
func (l *Log) ByLayer(layer logline.Layer) []logline.Line {
	var out []logline.Line
	for _, line := range l.Lines {
		if line.Layer == layer {
			out = append(out, line)
		}
	}
	return out
}
