// Package ports defines the interfaces that connect the autocrop hook to its
// image-processing adapters.
//
// # Port Interfaces
//
//   - [Detector]: finds the content bounding box of a page
//   - [Cropper]: applies a crop rectangle and writes the result
//   - [ReportRepository]: persists the per-batch outcome report
//
// The hook in plugins/autocrop depends only on these interfaces. Concrete
// implementations live in internal/adapters (pure Go imaging, an ImageMagick
// measurement step, OpenCV behind the gocv build tag, a JSON report file).
package ports
