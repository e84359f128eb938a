package normalizer

// fieldKind says how a raw value must be coerced before it is stored on the
// typed reading.
type fieldKind int

const (
	kindFloat fieldKind = iota
	kindInt
	kindBool
	kindString
)

// fieldSpec describes one recognized OBD-II field: its coercion kind and the
// documented physical range. Values outside the range are anomalies, not
// clamp candidates; clamping would silently corrupt the classifier inputs.
type fieldSpec struct {
	kind fieldKind
	min  float64
	max  float64
}

// fieldRegistry holds every field the pipeline recognizes, keyed by the wire
// name used by the collector daemon. Unrecognized keys are dropped. Ranges
// follow the OBD-II PID encodings (SAE J1979) where one exists; derived
// fields use the collector daemon's documented output ranges.
var fieldRegistry = map[string]fieldSpec{
	// Engine
	"rpm":            {kind: kindInt, min: 0, max: 16384},
	"coolant_temp":   {kind: kindFloat, min: -40, max: 215},
	"engine_load":    {kind: kindFloat, min: 0, max: 100},
	"throttle_pos":   {kind: kindFloat, min: 0, max: 100},
	"intake_temp":    {kind: kindFloat, min: -40, max: 215},
	"timing_advance": {kind: kindFloat, min: -64, max: 63.5},
	"absolute_load":  {kind: kindFloat, min: 0, max: 25700},
	"oil_temp":       {kind: kindFloat, min: -40, max: 215},
	"run_time":       {kind: kindFloat, min: 0, max: 65535},
	"speed":          {kind: kindFloat, min: 0, max: 255},

	// Fuel
	"fuel_level":         {kind: kindFloat, min: 0, max: 100},
	"fuel_trim_short":    {kind: kindFloat, min: -100, max: 99.2},
	"fuel_trim_long":     {kind: kindFloat, min: -100, max: 99.2},
	"fuel_pressure":      {kind: kindFloat, min: 0, max: 765},
	"fuel_system_status": {kind: kindString},

	// Air / pressure
	"maf":                 {kind: kindFloat, min: 0, max: 655.35},
	"map":                 {kind: kindFloat, min: 0, max: 255},
	"barometric_pressure": {kind: kindFloat, min: 0, max: 255},
	"ambient_air_temp":    {kind: kindFloat, min: -40, max: 215},
	"catalyst_temp":       {kind: kindFloat, min: -40, max: 6513.5},
	"commanded_egr":       {kind: kindFloat, min: 0, max: 100},

	// Electrical
	"control_module_voltage": {kind: kindFloat, min: 0, max: 65.535},

	// Diagnostics
	"dtc_count":      {kind: kindInt, min: 0, max: 127},
	"mil_status":     {kind: kindBool},
	"distance_w_mil": {kind: kindFloat, min: 0, max: 65535},

	// Derived
	"fuel_efficiency":     {kind: kindFloat, min: 0, max: 1000},
	"engine_stress_score": {kind: kindFloat, min: 0, max: 100},
	"egr_error":           {kind: kindFloat, min: -100, max: 99.2},
	"data_quality_score":  {kind: kindInt, min: 0, max: 100},
}

// RecognizedFields returns the wire names the normalizer accepts, mainly for
// docs and tests.
func RecognizedFields() []string {
	names := make([]string, 0, len(fieldRegistry))
	for name := range fieldRegistry {
		names = append(names, name)
	}
	return names
}
