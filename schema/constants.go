package schema

import "strings"

// Custom string types for type safety.
type (
	// Family represents a formula family (one calculator per family).
	Family string

	// VariantKey represents a unique registry key for one formula variant.
	VariantKey string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for the calculation ledger.
	DatabaseBackend string
)

// All formula families supported.
const (
	DthinFamily      Family = "DTHIN"
	DFExtFamily      Family = "DFEXT"
	DFSccFamily      Family = "DFSCC"
	DFMfatFamily     Family = "DFMFAT"
	DFCuiFamily      Family = "DFCUI"
	CofFamily        Family = "COF"
	RiskMatrixFamily Family = "RISK_MATRIX"
)

// Thinning variants. The numbered keys follow the mechanism list of the
// inspection program; DTHIN_BASIC is the family default.
const (
	DthinBasic        VariantKey = "DTHIN_BASIC"
	DthinLocalized    VariantKey = "DTHIN_1"
	DthinGeneral      VariantKey = "DTHIN_2"
	DthinErosion      VariantKey = "DTHIN_3"
	DthinFlowAssisted VariantKey = "DTHIN_4"
	DthinMicrobial    VariantKey = "DTHIN_5"
	DthinAcid         VariantKey = "DTHIN_6"
	DthinCaustic      VariantKey = "DTHIN_7"
	DthinAmine        VariantKey = "DTHIN_8"
	DthinSourWater    VariantKey = "DTHIN_9"
	DthinHighTempH2S  VariantKey = "DTHIN_10"
	DthinSulfidic     VariantKey = "DTHIN_11"
	DthinNaphthenic   VariantKey = "DTHIN_12"
	DthinAtmospheric  VariantKey = "DTHIN_13"
	DthinCoolingWater VariantKey = "DTHIN_14"
	DthinGalvanic     VariantKey = "DTHIN_15"
	DthinUniform      VariantKey = "DTHIN_16"
	DFExtBasic        VariantKey = "DFEXT_BASIC"
	DFSccBasic        VariantKey = "DFSCC_BASIC"
	DFMfatBasic       VariantKey = "DFMFAT_BASIC"
	DFCuiBasic        VariantKey = "DFCUI_BASIC"
	DFCuiAdvanced     VariantKey = "DFCUI_ADVANCED"
	CofProduction     VariantKey = "COF_BASIC"
	CofArea           VariantKey = "COF_AREA"
	RiskMatrixBasic   VariantKey = "RISK_MATRIX_BASIC"
)

// defaultVariantSuffix completes a family name into its default registry key.
const defaultVariantSuffix = "_BASIC"

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	CSVOut  OutputMode = "csv"
	JSONOut OutputMode = "json"
)

// All ledger backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// AllFamilies lists every formula family in display order.
var AllFamilies = []Family{
	DthinFamily,
	DFExtFamily,
	DFSccFamily,
	DFMfatFamily,
	DFCuiFamily,
	CofFamily,
	RiskMatrixFamily,
}

// ValidFamilies lists all valid formula families.
var ValidFamilies = map[Family]struct{}{
	DthinFamily:      {},
	DFExtFamily:      {},
	DFSccFamily:      {},
	DFMfatFamily:     {},
	DFCuiFamily:      {},
	CofFamily:        {},
	RiskMatrixFamily: {},
}

// ValidOutputModes lists all valid output modes for calculation results.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	CSVOut:  {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid ledger backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// NormalizeFamily trims and upper-cases a user-supplied family name.
func NormalizeFamily(s string) Family {
	return Family(strings.ToUpper(strings.TrimSpace(s)))
}

// NormalizeVariant trims and upper-cases a user-supplied variant key.
func NormalizeVariant(s string) VariantKey {
	return VariantKey(strings.ToUpper(strings.TrimSpace(s)))
}

// DefaultVariant returns the registry key used when no variant is supplied.
func DefaultVariant(family Family) VariantKey {
	return VariantKey(string(family) + defaultVariantSuffix)
}
