package reconcile

import (
	"time"

	"wlrecon/pkg/contracts/domain"
)

// Summarize aggregates run counts. ccp is the aligned CCP table.
func Summarize(ccp, at domain.Table, a *Analysis, now time.Time) domain.Statistics {
	stats := domain.Statistics{
		TotalCCP:          ccp.Len(),
		TotalAT:           at.Len(),
		TotalCommon:       a.CommonKeys,
		Requirement1Count: a.Requirement1.Len(),
		Requirement2Count: a.Requirement2.Len(),
		Requirement3Count: a.Requirement3.Len(),
		AmbiguousCCPKeys:  len(a.AmbiguousCCPKeys),
		AmbiguousATKeys:   len(a.AmbiguousATKeys),
		NullKeyRowsCCP:    a.NullKeyRowsCCP,
		NullKeyRowsAT:     a.NullKeyRowsAT,
		Timestamp:         now.Format(domain.TimestampLayout),
	}
	stats.TotalActionRequired = stats.Requirement1Count + stats.Requirement2Count + stats.Requirement3Count
	return stats
}
