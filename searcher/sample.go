package searcher

import (
	"errors"
	"fmt"

	"ggp/experiments/metrics"

	"github.com/rs/zerolog/log"
)

var ErrSamplePanic = errors.New("sample panicked")

// sample runs a single simulation. A Machine panicking on a bad state is turned into an error
// so one corrupted sample never takes the whole decision down.
func sample(simulate func() ([]float64, error)) (utility []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			utility = nil
			err = fmt.Errorf("%w: %v", ErrSamplePanic, r)
		}
	}()
	return simulate()
}

// discard records a failed sample, which still counts as a zero for every role
func discard(err error, roles int, collector metrics.Collector) []float64 {
	log.Debug().Err(err).Msg("discarding failed sample")
	collector.AddFailedSample()
	return make([]float64, roles)
}
