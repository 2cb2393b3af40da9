package supervisor

import (
	"bufio"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
)

// sink is the subset of *logstore.Store an OutputPump needs, kept narrow so
// the pump can be tested without a real file-backed store.
type sink interface {
	Append(path, line string, at time.Time) error
}

// outputPump continuously transfers a child's merged stdout+stderr into the
// log store, one line at a time, until EOF or a read error. Exactly one pump
// exists per ChildRun; it never holds the supervisor's slot mutex while
// blocked on a read.
type outputPump struct {
	log   *zap.Logger
	store sink
	path  string
}

func newOutputPump(log *zap.Logger, store sink, path string) *outputPump {
	return &outputPump{log: log, store: store, path: path}
}

// run drains r line by line until EOF or error, then returns. Invalid
// UTF-8 byte sequences are replaced with the Unicode replacement character
// rather than crashing the pump on binary output.
func (p *outputPump) run(r io.Reader) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		line = strings.ToValidUTF8(line, "�")
		if err := p.store.Append(p.path, line, time.Now().UTC()); err != nil {
			p.log.Error("failed to append log record", zap.Error(err), zap.String("path", p.path))
		}
	}

	if err := sc.Err(); err != nil {
		p.log.Warn("output pump read error; treating as EOF", zap.Error(err))
	}
}
