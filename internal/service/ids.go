package service

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/itchan-dev/textboard/internal/domain"
)

// idGenerator hands out strictly increasing Unix-nanosecond stamps, so two
// threads created within the same clock tick still get distinct ids.
type idGenerator struct {
	last atomic.Int64
}

func (g *idGenerator) stamp(now time.Time) int64 {
	for {
		last := g.last.Load()
		next := now.UnixNano()
		if next <= last {
			next = last + 1
		}
		if g.last.CompareAndSwap(last, next) {
			return next
		}
	}
}

func (g *idGenerator) threadId(board domain.BoardId, now time.Time) domain.ThreadId {
	return board + "_" + strconv.FormatInt(g.stamp(now), 10)
}
