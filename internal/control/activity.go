package control

// ActivityLogSize is the number of entries kept by the activity log.
const ActivityLogSize = 100

// ActivityLog is a fixed-capacity ring of formatted entries. Once full, each
// Add evicts the oldest entry. It is not safe for concurrent use.
type ActivityLog struct {
	buf   []string
	start int
	n     int
}

// NewActivityLog returns a log holding at most size entries.
func NewActivityLog(size int) *ActivityLog {
	if size < 1 {
		size = 1
	}
	return &ActivityLog{buf: make([]string, size)}
}

// Add appends entry, evicting the oldest one when the log is full.
func (l *ActivityLog) Add(entry string) {
	if l.n < len(l.buf) {
		l.buf[(l.start+l.n)%len(l.buf)] = entry
		l.n++
		return
	}
	l.buf[l.start] = entry
	l.start = (l.start + 1) % len(l.buf)
}

// Len reports the number of stored entries.
func (l *ActivityLog) Len() int { return l.n }

// Cap reports the capacity of the log.
func (l *ActivityLog) Cap() int { return len(l.buf) }

// Entries returns a copy of the stored entries, oldest first.
func (l *ActivityLog) Entries() []string {
	out := make([]string, l.n)
	for i := 0; i < l.n; i++ {
		out[i] = l.buf[(l.start+i)%len(l.buf)]
	}
	return out
}

// Last returns the most recent entry.
func (l *ActivityLog) Last() (string, bool) {
	if l.n == 0 {
		return "", false
	}
	return l.buf[(l.start+l.n-1)%len(l.buf)], true
}
