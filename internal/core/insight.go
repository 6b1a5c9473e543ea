package core

import (
	"fmt"
	"strconv"
	"strings"
)

// NoDataInsight is returned by SynthesizeInsight for an empty table.
const NoDataInsight = "### Key Insight\nNo data available to generate insights."

// CategoryCount is the most frequent value of a categorical column.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PainPoint is the column with the most missing values.
type PainPoint struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// TopCategory returns the most frequent non-missing value of field. Ties go
// to the value seen first. Returns {"N/A", 0} when the field is absent or
// has no values.
func TopCategory(t *Table, field string) CategoryCount {
	top := CategoryCount{Name: NotAvailable}
	c, ok := t.Column(field)
	if !ok || t.IsEmpty() {
		return top
	}

	counts := make(map[string]int)
	for i := 0; i < c.Len(); i++ {
		if c.valid[i] {
			counts[c.key(i)]++
		}
	}
	for i := 0; i < c.Len(); i++ {
		if !c.valid[i] {
			continue
		}
		if n := counts[c.key(i)]; n > top.Count {
			top = CategoryCount{Name: c.Format(i), Count: n}
		}
	}
	return top
}

// MainPainPoint returns the first column with the highest missing count.
func MainPainPoint(t *Table) PainPoint {
	if t.IsEmpty() {
		return PainPoint{Column: NotAvailable}
	}
	best := PainPoint{Column: t.columns[0].Name, Count: t.columns[0].MissingCount()}
	for _, c := range t.columns[1:] {
		if n := c.MissingCount(); n > best.Count {
			best = PainPoint{Column: c.Name, Count: n}
		}
	}
	return best
}

// LatestValue returns the maximum of field formatted for display, or
// "unknown" when the field is absent or has no usable values.
func LatestValue(t *Table, field string) string {
	const unknown = "unknown"
	c, ok := t.Column(field)
	if !ok {
		return unknown
	}

	if c.Type == ColumnTemporal {
		idx := -1
		for i, ts := range c.times {
			if c.valid[i] && (idx < 0 || ts.After(c.times[idx])) {
				idx = i
			}
		}
		if idx < 0 {
			return unknown
		}
		return c.times[idx].Format(TimestampLayout)
	}

	values, valid, ok := numericView(c)
	if !ok {
		return unknown
	}
	idx := -1
	for i := range values {
		if valid[i] && (idx < 0 || values[i] > values[idx]) {
			idx = i
		}
	}
	if idx < 0 {
		return unknown
	}
	return strconv.FormatInt(int64(values[idx]), 10)
}

// SynthesizeInsight fills the four-part narrative (What / Why / So What /
// Now What) from the top category, the main pain point and the latest value
// of the recency field.
func SynthesizeInsight(t *Table, cfg AuditConfig) string {
	if t.IsEmpty() {
		return NoDataInsight
	}

	top := TopCategory(t, cfg.CategoryField)
	pain := MainPainPoint(t)
	latest := LatestValue(t, cfg.RecencyField)

	var b strings.Builder
	b.WriteString("### Key Insight\n")
	fmt.Fprintf(&b, "* **What:** **%s** recorded the most crash reports with **%s** records; the latest data reaches **%s**.\n",
		top.Name, formatCount(top.Count), latest)
	b.WriteString("* **Why:** It is the primary agency with the widest area of responsibility, or it enforces and records traffic incidents more systematically than other agencies.\n")
	fmt.Fprintf(&b, "* **So What:** The main pain point is column **'%s'**, missing **%s** values, which lowers the accuracy of the overall analysis.\n",
		pain.Column, formatCount(pain.Count))
	fmt.Fprintf(&b, "* **Now What:** Review the data entry pipeline of **%s** to reduce missing values, and direct field inspections to locations with repeated incidents.",
		top.Name)
	return b.String()
}
