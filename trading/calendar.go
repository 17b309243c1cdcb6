package trading

import (
	"sort"
	"time"
)

// DateLayout 日期格式
const DateLayout = "2006-01-02"

// Calendar 交易日历：价格序列中实际出现过的日期
type Calendar struct {
	dates []time.Time
	index map[string]int
}

// NewCalendar 由日期列表构建交易日历（自动排序去重，只保留日期部分）
func NewCalendar(dates []time.Time) *Calendar {
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if d.IsZero() {
			continue
		}
		days = append(days, Day(d))
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	c := &Calendar{index: make(map[string]int, len(days))}
	for _, d := range days {
		key := d.Format(DateLayout)
		if _, ok := c.index[key]; ok {
			continue
		}
		c.index[key] = len(c.dates)
		c.dates = append(c.dates, d)
	}
	return c
}

// Day 截断为 UTC 零点
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Len 交易日数量
func (c *Calendar) Len() int {
	return len(c.dates)
}

// Date 第 i 个交易日
func (c *Calendar) Date(i int) time.Time {
	return c.dates[i]
}

// Last 最后一个交易日
func (c *Calendar) Last() (time.Time, bool) {
	if len(c.dates) == 0 {
		return time.Time{}, false
	}
	return c.dates[len(c.dates)-1], true
}

// Index 查找精确日期
func (c *Calendar) Index(t time.Time) (int, bool) {
	i, ok := c.index[Day(t).Format(DateLayout)]
	return i, ok
}

// Beyond 日期是否晚于日历最后一天
func (c *Calendar) Beyond(t time.Time) bool {
	last, ok := c.Last()
	if !ok {
		return true
	}
	return Day(t).After(last)
}

// NextOnOrAfter 从 t 开始找交易日：先查 t 本身，再逐日向后最多 maxDays 天
func (c *Calendar) NextOnOrAfter(t time.Time, maxDays int) (int, bool) {
	d := Day(t)
	if i, ok := c.Index(d); ok {
		return i, true
	}
	for n := 1; n <= maxDays; n++ {
		if i, ok := c.Index(d.AddDate(0, 0, n)); ok {
			return i, true
		}
	}
	return 0, false
}

// LastOnOrBefore 不晚于 t 的最后一个交易日
func (c *Calendar) LastOnOrBefore(t time.Time) (int, bool) {
	d := Day(t)
	i := sort.Search(len(c.dates), func(i int) bool { return c.dates[i].After(d) })
	if i == 0 {
		return 0, false
	}
	return i - 1, true
}

// AddMonths 自然月偏移（月末溢出顺延到下月）
func AddMonths(t time.Time, months int) time.Time {
	return Day(t).AddDate(0, months, 0)
}

// DaysBetween 两个日期之间的自然日数
func DaysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)).Hours() / 24)
}
