package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

// ReadDiffLog reads a diff-log CSV. Missing required columns abort with
// ErrMalformedDiffLog and a message listing every required column.
func ReadDiffLog(path string) ([]mdmerge.DiffRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open diff log: %w", err)
	}
	defer f.Close()
	return ParseDiffLog(f)
}

// ParseDiffLog reads diff-log rows from a reader.
func ParseDiffLog(r io.Reader) ([]mdmerge.DiffRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read header: %v", mdmerge.ErrMalformedDiffLog, err)
	}

	index := make(map[string]int)
	var oldValueCols []int
	for i, name := range header {
		canonical := canonicalName(name)
		if canonical == colOldValue {
			oldValueCols = append(oldValueCols, i)
			continue
		}
		if _, dup := index[canonical]; !dup {
			index[canonical] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if col == colOldValue {
			if len(oldValueCols) == 0 {
				missing = append(missing, col)
			}
			continue
		}
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s; a diff log requires: %s",
			mdmerge.ErrMalformedDiffLog,
			strings.Join(missing, ", "),
			strings.Join(requiredColumns, ", "))
	}

	field := func(record []string, col string) string {
		i := index[col]
		if i >= len(record) {
			return ""
		}
		return record[i]
	}

	var rows []mdmerge.DiffRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", mdmerge.ErrMalformedDiffLog, err)
		}

		row := mdmerge.DiffRow{
			LogName:   field(record, colLogName),
			Timestamp: field(record, colTimestamp),
			WorkTeam:  field(record, colWorkTeam),
			Developer: field(record, colDeveloper),
			UserStory: field(record, colUserStory),
			Action:    mdmerge.Action(field(record, colAction)),
			Metadata:  field(record, colMetadata),
			Path:      field(record, colPath),
			NewValue:  field(record, colNewValue),
		}
		row.Keys[0] = field(record, colL1)
		row.Keys[1] = field(record, colL2)
		row.Keys[2] = field(record, colL3)
		row.Keys[3] = field(record, colL4)
		for _, i := range oldValueCols {
			if i < len(record) {
				row.OldValues = append(row.OldValues, record[i])
			} else {
				row.OldValues = append(row.OldValues, "")
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
