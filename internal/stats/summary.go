package stats

// Summary aggregates the counters of all records.
type Summary struct {
	Runs                  int    `json:"runs"`
	JobsFound             int    `json:"jobs_found"`
	JobsApproved          int    `json:"jobs_approved"`
	ApplicationsGenerated int    `json:"applications_generated"`
	FirstDate             string `json:"first_date,omitempty"`
	LastDate              string `json:"last_date,omitempty"`
	// ByDate sums the counters of all records of one day.
	ByDate map[string]Record `json:"by_date,omitempty"`
}

func Summarize(records []Record) Summary {
	s := Summary{Runs: len(records), ByDate: map[string]Record{}}

	for _, r := range records {
		s.JobsFound += r.JobsFound
		s.JobsApproved += r.JobsApproved
		s.ApplicationsGenerated += r.ApplicationsGenerated

		if s.FirstDate == "" || r.Date < s.FirstDate {
			s.FirstDate = r.Date
		}
		if r.Date > s.LastDate {
			s.LastDate = r.Date
		}

		day := s.ByDate[r.Date]
		day.Date = r.Date
		day.JobsFound += r.JobsFound
		day.JobsApproved += r.JobsApproved
		day.ApplicationsGenerated += r.ApplicationsGenerated
		s.ByDate[r.Date] = day
	}

	return s
}
