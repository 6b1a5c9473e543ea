package tables

import "github.com/JonMunkholm/crashaudit/internal/core"

// CrashReportsKey identifies the crash reporting dataset.
const CrashReportsKey = "crash_reports"

var crashKeyFields = []string{"Report Number", "Local Case Number", "Agency Name", "Crash Date/Time"}

func init() {
	registerCrashReports()
}

func registerCrashReports() {
	core.Register(core.DatasetDefinition{
		Info: core.DatasetInfo{
			Key:         CrashReportsKey,
			Label:       "Crash Reports",
			Description: "Traffic crash reports with driver and vehicle details",
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "Report Number", Type: core.ColumnText},
			{Name: "Local Case Number", Type: core.ColumnText},
			{Name: "Agency Name", Type: core.ColumnText, Normalizer: NormalizeWhitespace},
			{Name: "ACRS Report Type", Type: core.ColumnText},
			{Name: "Crash Date/Time", Type: core.ColumnTemporal},
			{Name: "Route Type", Type: core.ColumnText},
			{Name: "Road Name", Type: core.ColumnText, Normalizer: NormalizeWhitespace},
			{Name: "Collision Type", Type: core.ColumnText, Normalizer: NormalizeUpper},
			{Name: "Weather", Type: core.ColumnText, Normalizer: NormalizeUpper},
			{Name: "Surface Condition", Type: core.ColumnText, Normalizer: NormalizeUpper},
			{Name: "Light", Type: core.ColumnText, Normalizer: NormalizeUpper},
			{Name: "Driver Substance Abuse", Type: core.ColumnText, Normalizer: NormalizeUpper},
			{Name: "Person ID", Type: core.ColumnText},
			{Name: "Drivers License State", Type: core.ColumnText, Normalizer: NormalizeUsState},
			{Name: "Vehicle ID", Type: core.ColumnText},
			{Name: "Vehicle Damage Extent", Type: core.ColumnText, Normalizer: NormalizeUpper},
			{Name: "Vehicle Body Type", Type: core.ColumnText, Normalizer: NormalizeUpper},
			{Name: "Speed Limit", Type: core.ColumnNumeric},
			{Name: "Vehicle Year", Type: core.ColumnNumeric},
			{Name: "Vehicle Make", Type: core.ColumnText, Normalizer: NormalizeUpper},
			{Name: "Vehicle Model", Type: core.ColumnText, Normalizer: NormalizeUpper},
			{Name: "Latitude", Type: core.ColumnNumeric},
			{Name: "Longitude", Type: core.ColumnNumeric},
			{Name: "Location", Type: core.ColumnText},
		},
		Rules: CrashRules(),
	})
}

// CrashRules returns the default audit rules for crash reports.
func CrashRules() core.AuditConfig {
	return core.AuditConfig{
		KeyFields:         append([]string(nil), crashKeyFields...),
		PrimaryKey:        "Report Number",
		TimestampField:    "Crash Date/Time",
		YearField:         "Vehicle Year",
		NonNegativeFields: []string{"Speed Limit"},
		CategoryField:     "Agency Name",
		RecencyField:      "Vehicle Year",
		LatitudeField:     "Latitude",
		LongitudeField:    "Longitude",
		Ranges:            []core.RangeRule{{Field: "Speed Limit", Min: 0, Max: 100}},
	}
}
