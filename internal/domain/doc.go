// Package domain contains the value types shared by the workflow engine and
// the autocrop hook.
//
// Nothing here performs I/O. The types describe one run of the process
// stage:
//
//   - [Page]: one scanned image, its position in the sorted stage listing and
//     the parity derived from that position
//   - [GutterConfig]: gutter and extra-crop margins read once per run
//   - [Rect]: a rectangle in original-image pixel space, used both for the
//     detected bounding box and for the resolved crop rectangle
//   - [ProcessingTask]: the unit of work handed to the worker pool
//   - [BatchResult]: per-page outcomes collected when the pool joins
//
// Pages, tasks and configuration are immutable once built, which lets the
// pool share them between workers without locking.
package domain
