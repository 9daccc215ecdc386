package domain

import (
	"fmt"
	"image"
)

// Rect is an axis-aligned rectangle in original-image pixel space.
// A detected bounding box and a resolved crop rectangle share this shape.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Full returns the rectangle covering a whole w×h image.
func Full(w, h int) Rect {
	return Rect{Width: w, Height: h}
}

// FromImage converts an image.Rectangle, ignoring its origin offset.
func FromImage(r image.Rectangle, origin image.Point) Rect {
	return Rect{
		Left:   r.Min.X - origin.X,
		Top:    r.Min.Y - origin.Y,
		Width:  r.Dx(),
		Height: r.Dy(),
	}
}

// Scale multiplies every field by n.
func (r Rect) Scale(n int) Rect {
	return Rect{Left: r.Left * n, Top: r.Top * n, Width: r.Width * n, Height: r.Height * n}
}

// Valid reports whether the rectangle has a non-negative origin and a
// positive area.
func (r Rect) Valid() bool {
	return r.Left >= 0 && r.Top >= 0 && r.Width > 0 && r.Height > 0
}

// Within reports whether r is valid and fits inside a w×h image.
func (r Rect) Within(w, h int) bool {
	return r.Valid() && r.Left+r.Width <= w && r.Top+r.Height <= h
}

// Clamp pulls r inside [0,w]×[0,h]. The result may have a non-positive size
// if r lies entirely outside the image; callers check Valid.
func (r Rect) Clamp(w, h int) Rect {
	if r.Left < 0 {
		r.Width += r.Left
		r.Left = 0
	}
	if r.Top < 0 {
		r.Height += r.Top
		r.Top = 0
	}
	if r.Left+r.Width > w {
		r.Width = w - r.Left
	}
	if r.Top+r.Height > h {
		r.Height = h - r.Top
	}
	return r
}

// Image converts r into an image.Rectangle anchored at origin.
func (r Rect) Image(origin image.Point) image.Rectangle {
	min := origin.Add(image.Pt(r.Left, r.Top))
	return image.Rectangle{Min: min, Max: min.Add(image.Pt(r.Width, r.Height))}
}

func (r Rect) String() string {
	return fmt.Sprintf("%d,%d,%dx%d", r.Left, r.Top, r.Width, r.Height)
}
