package reminder

import "fmt"

// Summary accumulates the outcome of one reminder run.
type Summary struct {
	Checked int      `json:"checked"` // Candidates in the scan window
	Sent    int      `json:"sent"`
	Failed  int      `json:"failed"`
	Skipped int      `json:"skipped"` // Candidates with a missing or malformed renewal date
	Errors  []string `json:"errors"`
}

func NewSummary() *Summary {
	return &Summary{Errors: make([]string, 0)}
}

func (s *Summary) RecordSent() {
	s.Sent++
}

func (s *Summary) RecordFailure(format string, args ...any) {
	s.Failed++
	s.Errors = append(s.Errors, fmt.Sprintf(format, args...))
}

func (s *Summary) RecordSkipped() {
	s.Skipped++
}
