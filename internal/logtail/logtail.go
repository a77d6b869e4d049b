package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Entry is one parsed log line.
type Entry struct {
	Time      time.Time
	Level     slog.Level
	Message   string
	Component string
	Attrs     map[string]string
	Raw       string
}

// Read returns at most maxLines from the end of the file at path. A missing
// file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = file.Close() }()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Tail reads the last maxLines of path and keeps entries at or above min.
// Lines that are not slog output are kept as INFO messages.
func Tail(path string, maxLines int, min slog.Level) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		e := Parse(line)
		if e.Level < min {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Parse decodes a line written by slog's text or JSON handler.
func Parse(line string) Entry {
	trimmed := strings.TrimSpace(line)
	var fields map[string]string
	if strings.HasPrefix(trimmed, "{") {
		fields = parseJSON(trimmed)
	} else {
		fields = parseText(trimmed)
	}

	e := Entry{Level: slog.LevelInfo, Raw: line}
	msg, hasMsg := fields["msg"]
	if !hasMsg {
		e.Message = trimmed
		return e
	}
	e.Message = msg
	if ts, err := time.Parse(time.RFC3339Nano, fields["time"]); err == nil {
		e.Time = ts
	}
	if lvl, ok := fields["level"]; ok {
		var level slog.Level
		if err := level.UnmarshalText([]byte(lvl)); err == nil {
			e.Level = level
		}
	}
	e.Component = fields["component"]
	for _, k := range []string{"time", "level", "msg", "component"} {
		delete(fields, k)
	}
	if len(fields) > 0 {
		e.Attrs = fields
	}
	return e
}

func parseJSON(line string) map[string]string {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return nil
	}
	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			fields[k] = val
		default:
			data, _ := json.Marshal(val)
			fields[k] = string(data)
		}
	}
	return fields
}

// parseText splits key=value pairs, honoring Go-quoted values.
func parseText(line string) map[string]string {
	fields := make(map[string]string)
	rest := line
	for rest != "" {
		rest = strings.TrimLeft(rest, " ")
		eq := strings.IndexByte(rest, '=')
		if eq <= 0 || strings.ContainsAny(rest[:eq], " \"") {
			return fields
		}
		key := rest[:eq]
		rest = rest[eq+1:]

		var value string
		if strings.HasPrefix(rest, `"`) {
			end := closingQuote(rest)
			if end < 0 {
				return fields
			}
			if unq, err := strconv.Unquote(rest[:end+1]); err == nil {
				value = unq
			} else {
				value = rest[1:end]
			}
			rest = rest[end+1:]
		} else {
			sp := strings.IndexByte(rest, ' ')
			if sp < 0 {
				sp = len(rest)
			}
			value = rest[:sp]
			rest = rest[sp:]
		}
		fields[key] = value
	}
	return fields
}

func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}
