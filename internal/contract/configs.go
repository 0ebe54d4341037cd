package contract

import (
	"fmt"
	"maps"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/rbicalc/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 2
	MaxPrecision     = 4
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the validated settings for one command invocation.
type Config struct {
	Workers    int
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	LenientCategories bool

	// Target is the positional argument: a family for calc, a variant key
	// for formulas show, a file path for batch.
	Target     string
	Family     string // --family filter for formulas list
	Variant    string
	Inputs     schema.FormulaInput
	InputsFile string

	// RiskInputs holds only the pof and cof values the user set, so an
	// omitted one is reported as missing rather than read as zero.
	RiskInputs schema.FormulaInput

	LedgerBackend   schema.DatabaseBackend
	LedgerDBConnect string // Please use env var as this is plaintext
}

// Clone returns a copy of c that shares no mutable state with it.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Inputs != nil {
		clone.Inputs = make(schema.FormulaInput, len(c.Inputs))
		maps.Copy(clone.Inputs, c.Inputs)
	}
	if c.RiskInputs != nil {
		clone.RiskInputs = maps.Clone(c.RiskInputs)
	}
	return &clone
}

// ConfigRawInput holds the unvalidated values gathered from file, env and flags.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	Args []string

	// --- Fields from rootCmd.PersistentFlags() ---
	Workers           int    `mapstructure:"workers"`
	Precision         int    `mapstructure:"precision"`
	Output            string `mapstructure:"output"`
	OutputFile        string `mapstructure:"output-file"`
	Width             int    `mapstructure:"width"`
	Color             string `mapstructure:"color"`
	LenientCategories bool   `mapstructure:"lenient-categories"`
	LedgerBackend     string `mapstructure:"ledger-backend"`
	LedgerDBConnect   string `mapstructure:"ledger-db-connect"`

	// --- Fields from calcCmd.Flags() ---
	Variant    string   `mapstructure:"variant"`
	Input      []string `mapstructure:"input"`
	InputsFile string   `mapstructure:"inputs-file"`

	// --- Fields from formulasListCmd.Flags() ---
	Family string `mapstructure:"family"`

	// --- Fields from riskCmd.Flags() ---
	POF float64 `mapstructure:"pof"`
	COF float64 `mapstructure:"cof"`

	// These are set manually from viper.IsSet, since flag defaults are
	// indistinguishable from explicit zeros after unmarshalling
	POFSet bool `mapstructure:"-"`
	COFSet bool `mapstructure:"-"`
}

// ProcessAndValidate checks input and copies the resolved values into cfg.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateLedgerConfig(cfg, input); err != nil {
		return err
	}
	if err := processCalculationInputs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString checks the connection string shape for a backend.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("ledger-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("ledger-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateLedgerConfig resolves the ledger backend; an empty value means none.
func validateLedgerConfig(cfg *Config, input *ConfigRawInput) error {
	backend := strings.ToLower(strings.TrimSpace(input.LedgerBackend))
	if backend == "" {
		backend = string(schema.NoneBackend)
	}
	cfg.LedgerBackend = schema.DatabaseBackend(backend)
	if _, ok := schema.ValidDatabaseBackends[cfg.LedgerBackend]; !ok {
		return fmt.Errorf("invalid ledger backend '%s'. must be sqlite, mysql, postgresql, none", input.LedgerBackend)
	}
	cfg.LedgerDBConnect = input.LedgerDBConnect
	return ValidateDatabaseConnectionString(cfg.LedgerBackend, cfg.LedgerDBConnect)
}

func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.LenientCategories = input.LenientCategories

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Output)
	}

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}
	return nil
}

// processCalculationInputs resolves the positional target and --input pairs.
func processCalculationInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Target = ""
	if len(input.Args) > 0 {
		cfg.Target = strings.TrimSpace(input.Args[0])
	}
	cfg.Family = strings.TrimSpace(input.Family)
	cfg.Variant = strings.TrimSpace(input.Variant)
	cfg.InputsFile = input.InputsFile
	cfg.RiskInputs = schema.FormulaInput{}
	if input.POFSet {
		cfg.RiskInputs["pof"] = input.POF
	}
	if input.COFSet {
		cfg.RiskInputs["cof"] = input.COF
	}

	inputs, err := ParseInputPairs(input.Input)
	if err != nil {
		return err
	}
	cfg.Inputs = inputs
	return nil
}

// ParseInputPairs turns name=value arguments into a formula input bag.
// Values stay strings; the engine converts them to the field types it needs.
func ParseInputPairs(pairs []string) (schema.FormulaInput, error) {
	inputs := schema.FormulaInput{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --input %q. expected name=value", pair)
		}
		inputs[name] = strings.TrimSpace(value)
	}
	return inputs, nil
}

// ProcessProfilingConfig enables profiling when a prefix is supplied.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
