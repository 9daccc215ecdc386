//go:build gocv

package autocrop

import (
	"github.com/bft-labs/spreads/internal/adapters/cv"
	"github.com/bft-labs/spreads/internal/ports"
)

func init() {
	registerDetector(DetectorGoCV, func(cfg Config) ports.Detector {
		return cv.NewDetector(cv.Config{
			ReduceFactor: cfg.ReduceFactor,
			Fuzz:         cfg.Fuzz,
			Sigma:        float64(cfg.BlurRadius) + 0.5,
		})
	})
}
