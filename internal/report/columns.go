package report

import "strings"

// Display-form column names, in file order.
const (
	colLogName   = "Developer Work Log Name"
	colTimestamp = "Request Time Stamp"
	colWorkTeam  = "Work Team"
	colDeveloper = "Developer Name"
	colUserStory = "User Story"
	colAction    = "Merge Action"
	colMetadata  = "Metadata"
	colPath      = "Path"
	colL1        = "L1 Key"
	colL2        = "L2 Key"
	colL3        = "L3 Key"
	colL4        = "L4 Key"
	colNewValue  = "New Value"
	colOldValue  = "Old Value"
)

// requiredColumns lists every column a diff log must carry. Extra
// trailing Old Value columns beyond the first are optional.
var requiredColumns = []string{
	colLogName, colTimestamp, colWorkTeam, colDeveloper, colUserStory,
	colAction, colMetadata, colPath, colL1, colL2, colL3, colL4,
	colNewValue, colOldValue,
}

// canonicalName maps either accepted spelling of a column to its display
// form. The alternative spelling replaces spaces with underscores and
// appends "__c".
func canonicalName(name string) string {
	name = strings.TrimSpace(name)
	for _, display := range requiredColumns {
		if name == display {
			return display
		}
		snake := strings.ReplaceAll(display, " ", "_") + "__c"
		if name == snake {
			return display
		}
	}
	return name
}
