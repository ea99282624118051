package pipeline

import (
	"bufio"
	"io"
	"strings"

	"go.uber.org/zap"
)

// scanStats counts the lines seen in one source stream
type scanStats struct {
	lines       int64
	parseErrors int64
}

// scanLines reads a source stream line by line in bounded memory. Blank
// lines are skipped. handle returns false for lines that failed to parse.
// Every chunkSize lines a progress entry is logged, which matters for
// multi-gigabyte archive members. A read error (including the resolver's
// decompressed size limit) stops the scan and is returned; lines consumed
// before the error were already handled.
func scanLines(r io.Reader, chunkSize int, log *zap.Logger, source string, handle func(line string, lineNo int) bool) (scanStats, error) {
	var stats scanStats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		stats.lines++
		if !handle(line, lineNo) {
			stats.parseErrors++
		}

		if chunkSize > 0 && lineNo%chunkSize == 0 {
			log.Debug("scan progress", zap.String("source", source), zap.Int("lines", lineNo))
		}
	}

	return stats, scanner.Err()
}
