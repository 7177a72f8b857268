package domain

import "strconv"

// TimestampLayout is the layout of Statistics.Timestamp
const TimestampLayout = "2006-01-02 15:04:05"

// Statistics summarises a single reconciliation run
type Statistics struct {
	TotalCCP            int    `json:"total_ccp"`
	TotalAT             int    `json:"total_at"`
	TotalCommon         int    `json:"total_common"`
	Requirement1Count   int    `json:"requirement_1_count"`
	Requirement2Count   int    `json:"requirement_2_count"`
	Requirement3Count   int    `json:"requirement_3_count"`
	TotalActionRequired int    `json:"total_action_required"`
	AmbiguousCCPKeys    int    `json:"ambiguous_ccp_keys"`
	AmbiguousATKeys     int    `json:"ambiguous_at_keys"`
	NullKeyRowsCCP      int    `json:"null_key_rows_ccp"`
	NullKeyRowsAT       int    `json:"null_key_rows_at"`
	Timestamp           string `json:"timestamp"`
}

// StatisticLine is one metric of the summary report
type StatisticLine struct {
	Metric string `json:"metric"`
	Value  string `json:"value"`
}

// Lines flattens the statistics into report rows in display order.
func (s Statistics) Lines() []StatisticLine {
	return []StatisticLine{
		{Metric: "Total CCP Securities", Value: itoa(s.TotalCCP)},
		{Metric: "Total AT Securities", Value: itoa(s.TotalAT)},
		{Metric: "Common Securities", Value: itoa(s.TotalCommon)},
		{Metric: "Requirement 1: In CCP, not in AT", Value: itoa(s.Requirement1Count)},
		{Metric: "Requirement 2: In AT, not in CCP", Value: itoa(s.Requirement2Count)},
		{Metric: "Requirement 3: Configuration mismatches", Value: itoa(s.Requirement3Count)},
		{Metric: "Total Action Required", Value: itoa(s.TotalActionRequired)},
		{Metric: "Ambiguous CCP Keys", Value: itoa(s.AmbiguousCCPKeys)},
		{Metric: "Ambiguous AT Keys", Value: itoa(s.AmbiguousATKeys)},
		{Metric: "CCP Rows With Null Key Part", Value: itoa(s.NullKeyRowsCCP)},
		{Metric: "AT Rows With Null Key Part", Value: itoa(s.NullKeyRowsAT)},
		{Metric: "Timestamp", Value: s.Timestamp},
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
