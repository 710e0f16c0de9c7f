package window

import (
	"iter"
	"sort"
	"time"

	"github.com/rxtech-lab/argo-analytics/internal/ledger"
)

// DefaultDays is the default trailing window length.
const DefaultDays = 30

// Window is the trailing slice of a frame ending at an anchor day.
type Window struct {
	// Anchor is the UTC midnight of the last calendar day in the window.
	Anchor time.Time
	Frame  ledger.Frame
}

// Engine yields trailing windows over a frame, ascending by anchor.
type Engine interface {
	Windows(frame ledger.Frame) []Window
	All(frame ledger.Frame) iter.Seq2[time.Time, ledger.Frame]
}

// RollingEngine anchors one window on every calendar day of the frame.
// A window at anchor d holds rows whose calendar day is in (d-Days, d].
type RollingEngine struct {
	Days int
	// SkipHead drops anchors whose window would reach before the first day of data.
	SkipHead bool
}

func NewRollingEngine(days int, skipHead bool) *RollingEngine {
	return &RollingEngine{Days: days, SkipHead: skipHead}
}

// Windows implements Engine.
func (e *RollingEngine) Windows(frame ledger.Frame) []Window {
	windows := make([]Window, 0)
	for anchor, view := range e.All(frame) {
		windows = append(windows, Window{Anchor: anchor, Frame: view})
	}

	return windows
}

// All implements Engine. Each yielded frame is a view over the input rows.
func (e *RollingEngine) All(frame ledger.Frame) iter.Seq2[time.Time, ledger.Frame] {
	return func(yield func(time.Time, ledger.Frame) bool) {
		if e.Days < 1 {
			return
		}

		first, last, ok := frame.Span()
		if !ok {
			return
		}

		start := first
		if e.SkipHead {
			start = first.AddDate(0, 0, e.Days-1)
		}

		rows := frame.Rows()

		for anchor := start; !anchor.After(last); anchor = anchor.AddDate(0, 0, 1) {
			from := anchor.AddDate(0, 0, -(e.Days - 1))
			until := anchor.AddDate(0, 0, 1)

			lo := sort.Search(len(rows), func(i int) bool {
				return !rows[i].Time.Before(from)
			})
			hi := sort.Search(len(rows), func(i int) bool {
				return !rows[i].Time.Before(until)
			})

			if !yield(anchor, frame.Slice(lo, hi)) {
				return
			}
		}
	}
}

// Windows is a convenience wrapper around RollingEngine.
func Windows(frame ledger.Frame, days int, skipHead bool) []Window {
	return NewRollingEngine(days, skipHead).Windows(frame)
}
