package editor

import (
	"time"

	"github.com/dunamismax/pixelpro/internal/domain"
)

// OutcomeOK labels a successful operation. Failures are labelled with their
// error kind.
const OutcomeOK = "ok"

// Observer receives timings for the three stages of a session. The HTTP host
// backs it with prometheus; the browser host leaves it unset.
type Observer interface {
	ObserveIngest(outcome string, bytes int64, elapsed time.Duration)
	ObserveRender(width, height int, elapsed time.Duration)
	ObserveExport(format domain.Format, outcome string, bytes int, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveIngest(string, int64, time.Duration)              {}
func (nopObserver) ObserveRender(int, int, time.Duration)                   {}
func (nopObserver) ObserveExport(domain.Format, string, int, time.Duration) {}

func outcomeOf(err error) string {
	if err == nil {
		return OutcomeOK
	}
	return domain.Kind(err)
}
