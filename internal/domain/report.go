package domain

import "time"

// Report is the persisted summary of one batch, written next to the stage
// so later stages can skip pages that failed.
type Report struct {
	Hook       string       `json:"hook"`
	Detector   string       `json:"detector"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Total      int          `json:"total"`
	Succeeded  int          `json:"succeeded"`
	Pages      []PageReport `json:"pages"`
}

// PageReport is one page's line in a Report.
type PageReport struct {
	Name     string `json:"name"`
	Index    int    `json:"index"`
	Parity   string `json:"parity"`
	Rect     *Rect  `json:"rect,omitempty"`
	Fallback string `json:"fallback,omitempty"`
	Error    string `json:"error,omitempty"`
	Attempts int    `json:"attempts"`
}

// NewReport summarises res in page order.
func NewReport(hook, detector string, res BatchResult, started, finished time.Time) Report {
	r := Report{
		Hook:       hook,
		Detector:   detector,
		StartedAt:  started.UTC(),
		FinishedAt: finished.UTC(),
		Total:      len(res),
		Succeeded:  res.Succeeded(),
	}
	for _, p := range res.Pages() {
		o := res[p]
		pr := PageReport{
			Name:     p.Name(),
			Index:    p.Index,
			Parity:   p.Parity().String(),
			Attempts: o.Attempts,
		}
		if o.OK() {
			rect := o.Rect
			pr.Rect = &rect
		} else {
			pr.Error = o.Err.Error()
		}
		if o.Fallback != nil {
			pr.Fallback = o.Fallback.Error()
		}
		r.Pages = append(r.Pages, pr)
	}
	return r
}

// FailedPages returns the names of pages that did not succeed.
func (r Report) FailedPages() []string {
	var out []string
	for _, p := range r.Pages {
		if p.Error != "" {
			out = append(out, p.Name)
		}
	}
	return out
}
