package domain

import (
	"fmt"
	"time"
)

var weekdays = [...]string{"日", "月", "火", "水", "木", "金", "土"}

// FormatTimestamp renders t as "2006/01/02(曜) 15:04:05" in t's own location.
func FormatTimestamp(t time.Time) string {
	return fmt.Sprintf("%d/%02d/%02d(%s) %02d:%02d:%02d",
		t.Year(), int(t.Month()), t.Day(), weekdays[t.Weekday()],
		t.Hour(), t.Minute(), t.Second())
}

// for debug
func (p *Post) String() string {
	return fmt.Sprintf("[id:%s, thread:%s, number:%d, name:%s, content:%q, ts:%s]", p.Id, p.ThreadId, p.Number, p.Name, p.Content, p.Timestamp.Format(time.StampMilli))
}

func (t *Thread) String() string {
	return fmt.Sprintf("[id:%s, board:%s, title:%s, posts:%d, updated:%s]", t.Id, t.BoardId, t.Title, t.PostCount, t.UpdatedAt.Format(time.StampMilli))
}
