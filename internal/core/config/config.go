package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the immutable configuration object handed to every pipeline
// stage. Core components never read it from disk themselves; Load is called
// once at startup and the result is shared read-only.
type Config struct {
	Version     int             `toml:"version"`
	Root        string          `toml:"root"`
	Discovery   Discovery       `toml:"discovery"`
	Parser      Parser          `toml:"parser"`
	Thresholds  Thresholds      `toml:"thresholds"`
	WMFP        WMFPWeights     `toml:"wmfp_weights"`
	FPY         FPY             `toml:"fpy"`
	Debt        DebtWeights     `toml:"technical_debt"`
	Rating      Rating          `toml:"rating"`
	Duplication Duplication     `toml:"duplication"`
	Smells      SmellThresholds `toml:"code_smells"`
	Watch       Watch           `toml:"watch"`
	Output      Output          `toml:"output"`
}

type Discovery struct {
	Roots        []string `toml:"roots"`
	ExcludeDirs  []string `toml:"exclude_dirs"`
	ExcludeFiles []string `toml:"exclude_files"`
	IncludeTests bool     `toml:"include_tests"`
}

type Parser struct {
	// Strategy selects the extraction strategy for the whole run:
	// "auto", "ast" (tree-sitter) or "lexical". Never mixed mid-run.
	Strategy string `toml:"strategy"`
}

type Thresholds struct {
	Cyclo    CycloThresholds    `toml:"cyclomatic_complexity"`
	Halstead HalsteadThresholds `toml:"halstead_volume"`
	LOC      LOCThresholds      `toml:"lines_of_code"`
	MI       MIThresholds       `toml:"maintainability_index"`
	Nesting  NestingThresholds  `toml:"max_nesting_level"`
	Params   ParamThresholds    `toml:"number_of_parameters"`
	CBO      WarnCritInt        `toml:"coupling_between_objects"`
	DIT      WarnCritInt        `toml:"depth_of_inheritance"`
	NOM      WarnCritInt        `toml:"number_of_methods"`
	RFC      WarnCritInt        `toml:"response_for_class"`
	TCC      TCCThresholds      `toml:"tight_class_cohesion"`
	WOC      WOCThresholds      `toml:"weight_of_class"`
	WMC      WarnCritInt        `toml:"weighted_methods_per_class"`
	NOI      WarnCritInt        `toml:"number_of_imports"`
	NOEI     WarnCritInt        `toml:"number_of_external_imports"`
}

type CycloThresholds struct {
	Low      int `toml:"low"`
	Moderate int `toml:"moderate"`
	High     int `toml:"high"`
	VeryHigh int `toml:"very_high"`
}

type HalsteadThresholds struct {
	Low      float64 `toml:"low"`
	Moderate float64 `toml:"moderate"`
	High     float64 `toml:"high"`
	VeryHigh float64 `toml:"very_high"`
}

type LOCThresholds struct {
	FunctionMax int `toml:"function_max"`
	FileMax     int `toml:"file_max"`
	ClassMax    int `toml:"class_max"`
}

type MIThresholds struct {
	Good     float64 `toml:"good"`
	Moderate float64 `toml:"moderate"`
	Poor     float64 `toml:"poor"`
}

type NestingThresholds struct {
	Warning  int `toml:"warning"`
	Critical int `toml:"critical"`
}

type ParamThresholds struct {
	Warning  int `toml:"warning"`
	Critical int `toml:"critical"`
}

type WarnCritInt struct {
	Warning  int `toml:"warning"`
	Critical int `toml:"critical"`
}

type TCCThresholds struct {
	Warning float64 `toml:"warning"`
	Good    float64 `toml:"good"`
}

type WOCThresholds struct {
	Warning float64 `toml:"warning"`
}

// WMFPWeights is the declarative weight table for the eight WMFP
// components. The set must sum to 1.0 within epsilon; validation failure
// is fatal and never silently renormalized.
type WMFPWeights struct {
	FlowComplexity      float64 `toml:"flow_complexity"`
	ObjectVocabulary    float64 `toml:"object_vocabulary"`
	ObjectConjuration   float64 `toml:"object_conjuration"`
	ArithmeticIntricacy float64 `toml:"arithmetic_intricacy"`
	DataTransfer        float64 `toml:"data_transfer"`
	CodeStructure       float64 `toml:"code_structure"`
	InlineData          float64 `toml:"inline_data"`
	Comments            float64 `toml:"comments"`
}

func (w WMFPWeights) Sum() float64 {
	return w.FlowComplexity + w.ObjectVocabulary + w.ObjectConjuration +
		w.ArithmeticIntricacy + w.DataTransfer + w.CodeStructure +
		w.InlineData + w.Comments
}

type FPY struct {
	FunctionGates   FunctionGates `toml:"function_gates"`
	ClassGates      ClassGates    `toml:"class_gates"`
	FileGates       FileGates     `toml:"file_gates"`
	WeightFunctions float64       `toml:"weight_functions"`
	WeightClasses   float64       `toml:"weight_classes"`
	WeightSmells    float64       `toml:"weight_smells"`
}

func (f FPY) WeightSum() float64 {
	return f.WeightFunctions + f.WeightClasses + f.WeightSmells
}

type FunctionGates struct {
	MaxCyclo   int     `toml:"max_cyclo"`
	MaxNesting int     `toml:"max_nesting"`
	MinMI      float64 `toml:"min_mi"`
	MaxParams  int     `toml:"max_params"`
	MaxLOC     int     `toml:"max_loc"`
}

type ClassGates struct {
	MaxWMC int     `toml:"max_wmc"`
	MaxCBO int     `toml:"max_cbo"`
	MinTCC float64 `toml:"min_tcc"`
	MaxNOM int     `toml:"max_nom"`
	MinWOC float64 `toml:"min_woc"`
}

type FileGates struct {
	MaxImports          int `toml:"max_imports"`
	MaxMagicNumbers     int `toml:"max_magic_numbers"`
	MaxHardcodedStrings int `toml:"max_hardcoded_strings"`
	MaxDeadCode         int `toml:"max_dead_code"`
}

// DebtWeights maps threshold violations to remediation minutes.
type DebtWeights struct {
	CycloExcessPerPoint   float64 `toml:"cyclo_excess_per_point"`
	LOCExcessPerLine      float64 `toml:"loc_excess_per_line"`
	NestingExcessPerLevel float64 `toml:"nesting_excess_per_level"`
	ParamsExcessPerParam  float64 `toml:"params_excess_per_param"`
	CBOExcessPerPoint     float64 `toml:"cbo_excess_per_point"`
	DITExcessPerLevel     float64 `toml:"dit_excess_per_level"`
	LowCohesionPenalty    float64 `toml:"low_cohesion_penalty"`
	GodClassPenalty       float64 `toml:"god_class_penalty"`
}

type Rating struct {
	WeightMI  float64 `toml:"weight_mi"`
	WeightCC  float64 `toml:"weight_cc"`
	WeightFPY float64 `toml:"weight_fpy"`
	WeightTD  float64 `toml:"weight_td"`
	CCMax     float64 `toml:"cc_max"`
	TDMax     float64 `toml:"td_max"`
}

func (r Rating) WeightSum() float64 {
	return r.WeightMI + r.WeightCC + r.WeightFPY + r.WeightTD
}

type Duplication struct {
	MinTokens int `toml:"min_tokens"`
	MinLines  int `toml:"min_lines"`
	MaxPairs  int `toml:"max_pairs"`
}

type SmellThresholds struct {
	MagicNumbersWarning     int `toml:"magic_numbers_warning"`
	HardcodedStringsWarning int `toml:"hardcoded_strings_warning"`
	StaticMembersWarning    int `toml:"static_members_warning"`
	DeadCodeWarning         int `toml:"dead_code_warning"`
	MinStringLength         int `toml:"min_string_length"`
}

type Watch struct {
	Enabled          bool          `toml:"enabled"`
	Debounce         time.Duration `toml:"debounce"`
	RescansPerMinute float64       `toml:"rescans_per_minute"`
}

type Output struct {
	Directory string   `toml:"directory"`
	Formats   []string `toml:"formats"`
}

// Default returns the configuration used when no file is present. The
// numbers mirror the thresholds the metric definitions were calibrated
// against.
func Default() *Config {
	return &Config{
		Version: 1,
		Root:    ".",
		Discovery: Discovery{
			Roots: []string{"."},
			ExcludeDirs: []string{
				".git", ".dart_tool", "build", ".idea",
			},
			ExcludeFiles: []string{
				"*.g.dart", "*.freezed.dart", "*.mocks.dart",
				"generated_plugin_registrant.dart",
			},
		},
		Parser: Parser{Strategy: "auto"},
		Thresholds: Thresholds{
			Cyclo:    CycloThresholds{Low: 5, Moderate: 10, High: 20, VeryHigh: 50},
			Halstead: HalsteadThresholds{Low: 100, Moderate: 500, High: 1000, VeryHigh: 2000},
			LOC:      LOCThresholds{FunctionMax: 80, FileMax: 500, ClassMax: 300},
			MI:       MIThresholds{Good: 60, Moderate: 40, Poor: 20},
			Nesting:  NestingThresholds{Warning: 4, Critical: 6},
			Params:   ParamThresholds{Warning: 4, Critical: 7},
			CBO:      WarnCritInt{Warning: 10, Critical: 20},
			DIT:      WarnCritInt{Warning: 4, Critical: 6},
			NOM:      WarnCritInt{Warning: 15, Critical: 30},
			RFC:      WarnCritInt{Warning: 50, Critical: 100},
			TCC:      TCCThresholds{Warning: 0.33, Good: 0.66},
			WOC:      WOCThresholds{Warning: 0.33},
			WMC:      WarnCritInt{Warning: 20, Critical: 50},
			NOI:      WarnCritInt{Warning: 15, Critical: 30},
			NOEI:     WarnCritInt{Warning: 10, Critical: 20},
		},
		WMFP: WMFPWeights{
			FlowComplexity:      0.30,
			ObjectVocabulary:    0.20,
			ObjectConjuration:   0.10,
			ArithmeticIntricacy: 0.05,
			DataTransfer:        0.10,
			CodeStructure:       0.15,
			InlineData:          0.05,
			Comments:            0.05,
		},
		FPY: FPY{
			FunctionGates:   FunctionGates{MaxCyclo: 10, MaxNesting: 4, MinMI: 50, MaxParams: 4, MaxLOC: 50},
			ClassGates:      ClassGates{MaxWMC: 20, MaxCBO: 8, MinTCC: 0.33, MaxNOM: 20, MinWOC: 0.33},
			FileGates:       FileGates{MaxImports: 15, MaxMagicNumbers: 3, MaxHardcodedStrings: 5, MaxDeadCode: 0},
			WeightFunctions: 0.5,
			WeightClasses:   0.3,
			WeightSmells:    0.2,
		},
		Debt: DebtWeights{
			CycloExcessPerPoint:   10,
			LOCExcessPerLine:      2,
			NestingExcessPerLevel: 15,
			ParamsExcessPerParam:  5,
			CBOExcessPerPoint:     20,
			DITExcessPerLevel:     30,
			LowCohesionPenalty:    60,
			GodClassPenalty:       120,
		},
		Rating: Rating{
			WeightMI:  0.30,
			WeightCC:  0.25,
			WeightFPY: 0.25,
			WeightTD:  0.20,
			CCMax:     30,
			TDMax:     100,
		},
		Duplication: Duplication{MinTokens: 50, MinLines: 6, MaxPairs: 500},
		Smells: SmellThresholds{
			MagicNumbersWarning:     5,
			HardcodedStringsWarning: 10,
			StaticMembersWarning:    10,
			DeadCodeWarning:         5,
			MinStringLength:         2,
		},
		Watch: Watch{
			Debounce:         500 * time.Millisecond,
			RescansPerMinute: 12,
		},
		Output: Output{
			Directory: "analysis/metrics_output",
			Formats:   []string{"json"},
		},
	}
}

// Load reads a TOML config file, layers it over the defaults and validates
// the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		if !filepath.IsAbs(cfg.Root) {
			cfg.Root = filepath.Clean(filepath.Join(filepath.Dir(path), cfg.Root))
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
