package autocrop

import (
	"sort"
	"sync"

	"github.com/bft-labs/spreads/internal/adapters/imaging"
	"github.com/bft-labs/spreads/internal/adapters/magick"
	"github.com/bft-labs/spreads/internal/ports"
)

// Built-in detector names.
const (
	DetectorNative = "native"
	DetectorMagick = "magick"
	DetectorGoCV   = "gocv"
)

// detectorFactory builds a detector from the hook configuration.
type detectorFactory func(cfg Config) ports.Detector

var (
	detectorsMu sync.RWMutex
	detectors   = map[string]detectorFactory{
		DetectorNative: func(cfg Config) ports.Detector {
			return imaging.NewDetector(imaging.DetectorConfig{
				ReduceFactor: cfg.ReduceFactor,
				Fuzz:         cfg.Fuzz,
				BlurRadius:   cfg.BlurRadius,
			})
		},
		DetectorMagick: func(cfg Config) ports.Detector {
			return magick.NewDetector(magick.Config{
				Binary:       cfg.MagickBinary,
				ReduceFactor: cfg.ReduceFactor,
				Fuzz:         cfg.Fuzz,
			})
		},
	}
)

func registerDetector(name string, f detectorFactory) {
	detectorsMu.Lock()
	defer detectorsMu.Unlock()
	detectors[name] = f
}

func lookupDetector(name string) (detectorFactory, bool) {
	detectorsMu.RLock()
	defer detectorsMu.RUnlock()
	f, ok := detectors[name]
	return f, ok
}

// Detectors lists the detector names compiled into this binary.
func Detectors() []string {
	detectorsMu.RLock()
	defer detectorsMu.RUnlock()
	names := make([]string, 0, len(detectors))
	for n := range detectors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
