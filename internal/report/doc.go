// Package report reads and writes the diff-log CSV and writes the
// duplicate-key report.
//
// The diff log uses always-quoted UTF-8 CSV with a fixed column set.
// Column names are accepted in two spellings: the display form
// ("Developer Work Log Name") and the Snake_Case__c form
// ("Developer_Work_Log_Name__c"). Additional trailing "Old Value"
// columns are permitted, one per extra target branch.
package report
