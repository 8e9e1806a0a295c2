package bootstrap

import (
	"github.com/sirupsen/logrus"
)

type ledgerEntry struct {
	label  string
	object Object
}

// ledger records created objects so they can be released in exactly the
// reverse order of creation.
type ledger struct {
	entries []ledgerEntry
	logger  logrus.FieldLogger
}

func (l *ledger) push(label string, object Object) {
	l.entries = append(l.entries, ledgerEntry{label: label, object: object})
}

// take drops the entry with the given label without releasing it and
// returns its object.
func (l *ledger) take(label string) Object {
	for i, entry := range l.entries {
		if entry.label == label {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return entry.object
		}
	}
	return nil
}

func (l *ledger) labels() []string {
	labels := make([]string, 0, len(l.entries))
	for _, entry := range l.entries {
		labels = append(labels, entry.label)
	}
	return labels
}

func (l *ledger) releaseAll() {
	for i := len(l.entries) - 1; i >= 0; i-- {
		entry := l.entries[i]
		entry.object.Destroy()
		l.logger.WithField("object", entry.label).Debug("released")
	}
	l.entries = nil
}
