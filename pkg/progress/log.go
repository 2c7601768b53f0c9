package progress

import (
	"math"

	logging "github.com/ipfs/go-log/v2"

	"github.com/tragoedia0722/texopt/pkg/applier"
)

// Log reports progress as structured log entries: Info at begin, end and
// every 10% step, Debug for each asset.
type Log struct {
	logger   *logging.ZapEventLogger
	title    string
	lastStep int
}

var _ applier.ProgressSink = (*Log)(nil)

func NewLog(logger *logging.ZapEventLogger) *Log {
	return &Log{logger: logger, lastStep: -1}
}

func (l *Log) Begin(title string) {
	l.title = title
	l.lastStep = -1
	l.logger.Infow("progress begin", "title", title)
}

func (l *Log) Update(title, message string, fraction float64) {
	l.logger.Debugw("progress", "title", title, "message", message, "fraction", fraction)

	if step := int(math.Floor(clamp(fraction) * stepCount)); step > l.lastStep {
		l.lastStep = step
		l.logger.Infow("progress", "title", title, "percent", percent(fraction))
	}
}

func (l *Log) End() {
	l.logger.Infow("progress end", "title", l.title)
}

type multi []applier.ProgressSink

// Multi returns a sink that forwards every call to each of sinks in order.
// nil sinks are dropped.
func Multi(sinks ...applier.ProgressSink) applier.ProgressSink {
	var m multi
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

func (m multi) Begin(title string) {
	for _, s := range m {
		s.Begin(title)
	}
}

func (m multi) Update(title, message string, fraction float64) {
	for _, s := range m {
		s.Update(title, message, fraction)
	}
}

func (m multi) End() {
	for _, s := range m {
		s.End()
	}
}
