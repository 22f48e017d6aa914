package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vvka-141/mdmerge/internal/tree"
	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

// WriteDiffLog writes rows as always-quoted CSV. The header carries one
// Old Value column per target branch (at least one). Output goes through
// a temp file and rename so partial writes never clobber a prior log.
func WriteDiffLog(path string, rows []mdmerge.DiffRow) error {
	oldCols := 1
	for _, row := range rows {
		if len(row.OldValues) > oldCols {
			oldCols = len(row.OldValues)
		}
	}

	var b strings.Builder
	header := make([]string, 0, len(requiredColumns)+oldCols-1)
	header = append(header, requiredColumns[:len(requiredColumns)-1]...)
	for i := 0; i < oldCols; i++ {
		header = append(header, colOldValue)
	}
	writeRecord(&b, header)

	for _, row := range rows {
		record := []string{
			row.LogName, row.Timestamp, row.WorkTeam, row.Developer,
			row.UserStory, string(row.Action), row.Metadata, row.Path,
			row.Keys[0], row.Keys[1], row.Keys[2], row.Keys[3],
			row.NewValue,
		}
		for i := 0; i < oldCols; i++ {
			if i < len(row.OldValues) {
				record = append(record, row.OldValues[i])
			} else {
				record = append(record, "")
			}
		}
		writeRecord(&b, record)
	}

	return writeAtomic(path, []byte(b.String()))
}

// WriteDuplicates writes the duplicate-key report. The MetadataKey
// column renders path levels on separate lines for readability.
func WriteDuplicates(path string, dups *tree.Duplicates) error {
	var b strings.Builder
	writeRecord(&b, []string{"MetadataKey", "Content", "Count"})
	for _, row := range dups.Rows() {
		writeRecord(&b, []string{row.Key.Pretty(), row.Content, fmt.Sprintf("%d", row.Count)})
	}
	return writeAtomic(path, []byte(b.String()))
}

// writeRecord appends one always-quoted CSV record. encoding/csv only
// quotes when necessary; the diff-log format quotes every field.
func writeRecord(w io.StringWriter, record []string) {
	for i, field := range record {
		if i > 0 {
			w.WriteString(",")
		}
		w.WriteString(`"`)
		w.WriteString(strings.ReplaceAll(field, `"`, `""`))
		w.WriteString(`"`)
	}
	w.WriteString("\n")
}

func writeAtomic(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
