package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mash-protocol/bonjour-go/pkg/log"
)

// RunExport exports the log file to the specified format. An empty output
// writes to stdout.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	return export(reader, format, w)
}

func export(reader *log.Reader, format string, w io.Writer) error {
	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

var csvHeader = []string{
	"timestamp", "session_id", "operation", "category", "backend",
	"flags", "error_code", "name", "regtype", "domain",
	"fullname", "host", "port", "txt", "state", "message",
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := cw.Write(csvRow(event)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}

func csvRow(event log.Event) []string {
	row := make([]string, len(csvHeader))
	row[0] = event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	row[1] = event.SessionID
	row[2] = event.Operation.String()
	row[3] = event.Category.String()
	row[4] = event.Backend

	if r := event.Reply; r != nil {
		row[5] = r.Flags.String()
		row[6] = strconv.Itoa(int(r.ErrorCode))
		row[7] = r.Name
		row[8] = r.Regtype
		row[9] = r.Domain
		row[10] = r.Fullname
		row[11] = r.Host
		if r.Port != 0 {
			row[12] = strconv.Itoa(int(r.Port))
		}
		row[13] = strings.Join(log.TXTStrings(r.TXT), " ")
	}
	if s := event.State; s != nil {
		row[14] = s.State.String()
		row[15] = s.Reason
	}
	if e := event.Error; e != nil {
		row[6] = strconv.Itoa(int(e.Code))
		row[15] = e.Message
	}
	return row
}
