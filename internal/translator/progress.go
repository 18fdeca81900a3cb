package translator

// ProgressSink receives chunk progress; current is 1-based.
type ProgressSink interface {
	Report(current, total int)
}

// ProgressFunc adapts a function to ProgressSink.
type ProgressFunc func(current, total int)

func (f ProgressFunc) Report(current, total int) { f(current, total) }

type nopSink struct{}

func (nopSink) Report(int, int) {}

// NopSink discards progress.
var NopSink ProgressSink = nopSink{}
