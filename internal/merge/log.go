package merge

import (
	"sort"

	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

// Request is one batch of rows addressing a single target file under a
// single Request Time Stamp.
type Request struct {
	Timestamp string
	Rows      []mdmerge.DiffRow
}

// FileLog holds all requests for one target file, ordered by timestamp
// ascending (textual compare) so older pull requests apply first.
type FileLog struct {
	Path     string
	Requests []Request
}

// GroupLog organizes diff-log rows as path → timestamp → rows and
// returns the per-file logs ordered by path.
func GroupLog(rows []mdmerge.DiffRow) []FileLog {
	byPath := make(map[string]map[string][]mdmerge.DiffRow)
	for _, row := range rows {
		byTS := byPath[row.Path]
		if byTS == nil {
			byTS = make(map[string][]mdmerge.DiffRow)
			byPath[row.Path] = byTS
		}
		byTS[row.Timestamp] = append(byTS[row.Timestamp], row)
	}

	paths := make([]string, 0, len(byPath))
	for p := range byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	logs := make([]FileLog, 0, len(paths))
	for _, p := range paths {
		byTS := byPath[p]
		stamps := make([]string, 0, len(byTS))
		for ts := range byTS {
			stamps = append(stamps, ts)
		}
		sort.Strings(stamps)

		log := FileLog{Path: p}
		for _, ts := range stamps {
			log.Requests = append(log.Requests, Request{Timestamp: ts, Rows: byTS[ts]})
		}
		logs = append(logs, log)
	}
	return logs
}
