package strandio

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/wispify/internal/fsutil"
	"github.com/banshee-data/wispify/internal/wisp/clump"
)

// ReadTable reads a clumping table: one comma-separated row of dense point
// indices per guide. A blank line is a guide with no points.
func ReadTable(fsys fsutil.FileSystem, name string) (clump.Table, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("strandio: %w", err)
	}
	defer f.Close()

	var table clump.Table
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64<<10), maxLine)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			table = append(table, nil)
			continue
		}
		cells := strings.Split(text, ",")
		row := make([]int, 0, len(cells))
		for _, cell := range cells {
			idx, err := strconv.Atoi(strings.TrimSpace(cell))
			if err != nil {
				return nil, fmt.Errorf("strandio: %s:%d: %w", name, line, err)
			}
			if idx < 0 {
				return nil, fmt.Errorf("strandio: %s:%d: negative index %d", name, line, idx)
			}
			row = append(row, idx)
		}
		table = append(table, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("strandio: %s:%d: %w", name, line, err)
	}
	return table, nil
}

// WriteTable writes table in the format ReadTable reads.
func WriteTable(fsys fsutil.FileSystem, name string, table clump.Table) error {
	var b strings.Builder
	for _, row := range table {
		for i, idx := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(idx))
		}
		b.WriteByte('\n')
	}
	if err := fsys.WriteFile(name, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("strandio: %w", err)
	}
	return nil
}

// GroupingsName returns the table file name for a guide and a root file:
// "<guides>-<roots>-groupings<suffix>.csv", each stem cut at its first dot.
func GroupingsName(guides, roots, suffix string) string {
	return stem(guides) + "-" + stem(roots) + "-groupings" + suffix + ".csv"
}

func stem(path string) string {
	base, _, _ := strings.Cut(filepath.Base(path), ".")
	return base
}
