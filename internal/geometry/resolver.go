// Package geometry turns a detected content box into the final crop
// rectangle for a page.
package geometry

import (
	"fmt"

	"github.com/bft-labs/spreads/internal/domain"
)

// Resolve applies the gutter and extra-crop margins to bbox for the given
// page and clamps the result into the imgW×imgH image.
//
// The gutter narrows the box on the spine side. Odd pages are shifted right
// by the gutter; even pages are shifted by the extra margin only. A positive
// extra crop shaves the margin from all four edges.
//
// When the result collapses to a non-positive size the bbox is returned
// unchanged together with an error wrapping domain.ErrGeometry.
func Resolve(bbox domain.Rect, page domain.Page, cfg domain.GutterConfig, imgW, imgH int) (domain.Rect, error) {
	return ResolveTask(bbox, domain.NewTask(page, cfg, ""), imgW, imgH)
}

// ResolveTask is Resolve driven by the margins already selected into task.
func ResolveTask(bbox domain.Rect, task domain.ProcessingTask, imgW, imgH int) (domain.Rect, error) {
	page := task.Page
	parity := page.Parity()
	gutter := task.Gutter
	extra := task.ExtraCrop

	r := bbox
	if gutter > 0 {
		r.Width -= gutter
	}
	if extra > 0 {
		r.Width -= extra
		r.Height -= 2 * extra
		r.Top += extra
	}
	if parity == domain.Even {
		r.Left += extra
	} else {
		r.Left += gutter
	}

	r = r.Clamp(imgW, imgH)
	if !r.Valid() {
		return bbox, fmt.Errorf("%w: page %s %s resolved to %s", domain.ErrGeometry, page.Name(), parity, r)
	}
	return r, nil
}
