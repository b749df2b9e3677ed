package engagement

// Summary totals engagement across every record in the ledger.
type Summary struct {
	TotalItems           int `json:"totalItems"`
	TotalNotifications   int `json:"totalNotifications"`
	TotalSnoozes         int `json:"totalSnoozes"`
	TotalCompletions     int `json:"totalCompletions"`
	TotalProgressUpdates int `json:"totalProgressUpdates"`
	TotalViews           int `json:"totalViews"`
}

// Summarize computes the totals for snap.
func Summarize(snap Snapshot) Summary {
	s := Summary{TotalItems: len(snap)}
	for _, rec := range snap {
		s.TotalNotifications += rec.TotalNotifications
		s.TotalSnoozes += rec.SnoozedCount
		s.TotalCompletions += rec.Completions
		s.TotalProgressUpdates += len(rec.ProgressUpdates)
		s.TotalViews += rec.ViewCount
	}
	return s
}
