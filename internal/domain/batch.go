package domain

import "sort"

// ProcessingTask is one page's unit of work. It carries only paths and small
// integers so it can be copied freely into a worker.
type ProcessingTask struct {
	Page       Page
	Gutter     int
	ExtraCrop  int
	OutputPath string
}

// NewTask builds the task for page, selecting the gutter by parity.
func NewTask(page Page, cfg GutterConfig, outputPath string) ProcessingTask {
	return ProcessingTask{
		Page:       page,
		Gutter:     cfg.GutterFor(page.Parity()),
		ExtraCrop:  cfg.ExtraCrop,
		OutputPath: outputPath,
	}
}

// Outcome is the result of one task. A nil Err means success.
type Outcome struct {
	// Rect is the rectangle that was written, when the task succeeded.
	Rect Rect
	// Fallback records a recovered DetectionError or GeometryError.
	Fallback error
	Err      error
	Attempts int
}

// OK reports whether the task succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// BatchResult maps every submitted page to its outcome. Completion order is
// not preserved; iterate with Pages for a deterministic order.
type BatchResult map[Page]Outcome

// Pages returns the keys sorted by sequence index.
func (b BatchResult) Pages() []Page {
	pages := make([]Page, 0, len(b))
	for p := range b {
		pages = append(pages, p)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })
	return pages
}

// Succeeded counts successful outcomes.
func (b BatchResult) Succeeded() int {
	n := 0
	for _, o := range b {
		if o.OK() {
			n++
		}
	}
	return n
}

// Failures lists failed pages sorted by sequence index.
func (b BatchResult) Failures() []PageFailure {
	var out []PageFailure
	for _, p := range b.Pages() {
		if o := b[p]; !o.OK() {
			out = append(out, PageFailure{Page: p, Reason: o.Err})
		}
	}
	return out
}
