package core

import (
	"math"
	"strings"
	"testing"
)

func insightTable() *Table {
	return MustTable(
		NewTextColumn("Agency Name", []string{"Rockville Police", "Montgomery County Police", "Montgomery County Police", "Rockville Police", "Montgomery County Police"}),
		NewTextColumn("Weather", []string{"CLEAR", "", "", "RAIN", "CLEAR"}),
		NewTextColumn("Light", []string{"DAYLIGHT", "", "", "", "DARK"}),
		NewNumericColumn("Vehicle Year", []float64{2015, math.NaN(), 2021, 2008, 2019}),
	)
}

func TestTopCategory(t *testing.T) {
	got := TopCategory(insightTable(), "Agency Name")
	if got.Name != "Montgomery County Police" || got.Count != 3 {
		t.Errorf("TopCategory() = %+v", got)
	}

	got = TopCategory(insightTable(), "Missing")
	if got.Name != NotAvailable || got.Count != 0 {
		t.Errorf("TopCategory(absent) = %+v", got)
	}

	tie := MustTable(NewTextColumn("Agency Name", []string{"B", "A", "A", "B"}))
	if got := TopCategory(tie, "Agency Name"); got.Name != "B" {
		t.Errorf("TopCategory(tie) = %+v, want first seen", got)
	}
}

func TestMainPainPoint(t *testing.T) {
	got := MainPainPoint(insightTable())
	if got.Column != "Light" || got.Count != 3 {
		t.Errorf("MainPainPoint() = %+v", got)
	}
}

func TestLatestValue(t *testing.T) {
	if got := LatestValue(insightTable(), "Vehicle Year"); got != "2021" {
		t.Errorf("LatestValue() = %q, want 2021", got)
	}
	if got := LatestValue(insightTable(), "Missing"); got != "unknown" {
		t.Errorf("LatestValue(absent) = %q, want unknown", got)
	}
}

func TestSynthesizeInsight(t *testing.T) {
	cfg := AuditConfig{CategoryField: "Agency Name", RecencyField: "Vehicle Year"}
	got := SynthesizeInsight(insightTable(), cfg)

	for _, want := range []string{
		"### Key Insight",
		"* **What:** **Montgomery County Police** recorded the most crash reports with **3** records; the latest data reaches **2021**.",
		"* **Why:**",
		"* **So What:** The main pain point is column **'Light'**, missing **3** values",
		"* **Now What:** Review the data entry pipeline of **Montgomery County Police**",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("insight missing %q\ngot:\n%s", want, got)
		}
	}
}

func TestSynthesizeInsight_EmptyTable(t *testing.T) {
	got := SynthesizeInsight(MustTable(NewTextColumn("Agency Name", nil)), AuditConfig{})
	if got != NoDataInsight {
		t.Errorf("SynthesizeInsight() = %q, want %q", got, NoDataInsight)
	}
}

func TestSynthesizeInsight_ThousandsSeparators(t *testing.T) {
	agencies := make([]string, 1500)
	for i := range agencies {
		agencies[i] = "Montgomery County Police"
	}
	got := SynthesizeInsight(MustTable(NewTextColumn("Agency Name", agencies)), AuditConfig{CategoryField: "Agency Name"})
	if !strings.Contains(got, "**1,500** records") {
		t.Errorf("insight = %s, want 1,500", got)
	}
	if !strings.Contains(got, "**unknown**") {
		t.Errorf("insight = %s, want unknown latest value", got)
	}
}
