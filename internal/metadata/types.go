package metadata

import "github.com/agbru/tabulate/internal/record"

// CurrentVintage is the vintage id of the most recent data.
const CurrentVintage = "current"

// Source identifies the upstream provider of a program.
type Source string

// Known providers.
const (
	SourceCensusDataAPI Source = "CENSUS_DATA_API"
	SourceConsumerData  Source = "ESRI_CONSUMER_DATA"
	SourceUserUpload    Source = "USER_UPLOADED_DATA"
)

// Processor is the formula combining the operands of a data variable.
type Processor string

// Supported processors.
const (
	ProcessorIdentity Processor = "IDENTITY"
	ProcessorSum      Processor = "SUM"
	ProcessorRatio    Processor = "RATIO"
	ProcessorPercent  Processor = "PERCENT"
)

// OperandProcessor combines the sources within one operand.
type OperandProcessor string

// Supported operand processors.
const (
	OperandIdentity OperandProcessor = "IDENTITY"
	OperandSum      OperandProcessor = "SUM"
)

// FlagStrategy derives the name of a stat's suppression flag column.
type FlagStrategy string

// Flag column naming schemes.
const (
	FlagPrefixS     FlagStrategy = "PREFIX_S"
	FlagUnderscoreF FlagStrategy = "UNDERSCORE_F"
)

// ReliabilityStrategy derives the name of a stat's margin of error column.
type ReliabilityStrategy string

// ReliabilityACSMOE replaces the last character of the stat name with "M".
const ReliabilityACSMOE ReliabilityStrategy = "ACS_MOE"

// GeoType describes a geography level and how each upstream identifies it.
type GeoType struct {
	ID                     string   `yaml:"ID"`
	Name                   string   `yaml:"Name"`
	GeoIDField             string   `yaml:"GeoIdField"`
	DisplayField           string   `yaml:"DisplayField"`
	StateField             string   `yaml:"StateField,omitempty"`
	TigerIDField           string   `yaml:"TigerIdField"`
	TigerPartitionFields   []string `yaml:"TigerPartitionFields,omitempty"`
	TigerFIPSFields        []string `yaml:"TigerFIPSFields"`
	DataAPIIDField         string   `yaml:"DataAPIIdField"`
	DataAPIPartitionFields []string `yaml:"DataAPIPartitionFields,omitempty"`
	DataAPIFIPSFields      []string `yaml:"DataAPIFIPSFields"`
	ConsumerDataIDField    string   `yaml:"ConsumerDataIdField"`
	MapTigerID             bool     `yaml:"MapTigerId"`
	MapStateID             bool     `yaml:"MapStateId"`
	CompareToTypes         []string `yaml:"CompareToTypes,omitempty"`
}

// Program is one upstream dataset endpoint.
type Program struct {
	ID                  string              `yaml:"ID"`
	Name                string              `yaml:"Name"`
	Program             string              `yaml:"Program"`
	Year                string              `yaml:"Year"`
	Dataset             string              `yaml:"Dataset"`
	APIURL              string              `yaml:"API_URL"`
	Source              Source              `yaml:"Source"`
	GeoFormat           string              `yaml:"GeoFormat,omitempty"`
	MapTigerID          bool                `yaml:"MapTigerId"`
	MapStateID          bool                `yaml:"MapStateId"`
	FlagStrategy        FlagStrategy        `yaml:"FlagStrategy,omitempty"`
	ReliabilityStrategy ReliabilityStrategy `yaml:"ReliabilityStrategy,omitempty"`
}

// DisplayProperties control how a value is scaled and rendered.
type DisplayProperties struct {
	Round        int     `yaml:"Round" json:"round"`
	ScaleFactor  float64 `yaml:"ScaleFactor" json:"scaleFactor"`
	UOMPrefix    string  `yaml:"UOM_Prefix" json:"uomPrefix,omitempty"`
	UOMSuffix    string  `yaml:"UOM_Suffix" json:"uomSuffix,omitempty"`
	FormatNumber bool    `yaml:"Format_Number" json:"formatNumber"`
}

// UploadInfo marks a data variable created from user-uploaded data.
type UploadInfo struct {
	UploadID int    `json:"uploadId"`
	GeoType  string `json:"geoType"`
}

// DataVariable is a statistic a user can request.
type DataVariable struct {
	DisplayProperties `yaml:",inline"`

	ID           string      `yaml:"ID"`
	Name         string      `yaml:"Name"`
	ShowGeoChart bool        `yaml:"ShowGeoChart"`
	Upload       *UploadInfo `yaml:"-"`
}

// UserDefined reports whether the variable comes from an upload.
func (d DataVariable) UserDefined() bool { return d.Upload != nil }

// SourceRef points a data variable operand at one program column.
type SourceRef struct {
	ProgramID     string `yaml:"programId"`
	Variable      string `yaml:"Variable"`
	URLParameters string `yaml:"URL_Parameters,omitempty"`
	SectorField   string `yaml:"Sector_Field,omitempty"`
	RaceGroup     string `yaml:"RACE_GROUP,omitempty"`
	Sex           string `yaml:"SEX,omitempty"`
	VetGroup      string `yaml:"VET_GROUP,omitempty"`
}

// OperandSpec is an operand as stored in the catalog.
type OperandSpec struct {
	Sources          []SourceRef      `yaml:"sources"`
	OperandProcessor OperandProcessor `yaml:"operandProcessor"`
}

// VintageSpec binds a data variable to a geo type and vintage, as stored in
// the catalog.
type VintageSpec struct {
	DisplayProperties `yaml:",inline"`

	VariableID string       `yaml:"variableId"`
	GeoTypeID  string       `yaml:"geoTypeId"`
	VintageID  string       `yaml:"vintageId"`
	Processor  Processor    `yaml:"Processor"`
	Operand1   OperandSpec  `yaml:"operand1"`
	Operand2   *OperandSpec `yaml:"operand2,omitempty"`
}

// VarInfo names an upstream column and the alias its values are stored under.
type VarInfo struct {
	Name  string
	Alias string
}

// VarParts are the columns read for one source: the stat and, when the
// program defines them, its margin of error and suppression flag.
type VarParts struct {
	Stat VarInfo
	MOE  *VarInfo
	Flag *VarInfo
}

// APIVariable is a fully resolved source of an operand.
type APIVariable struct {
	Source              Source
	ProgramName         string
	Program             string
	Year                string
	Dataset             string
	APIURL              string
	MapTigerID          bool
	MapStateID          bool
	FlagStrategy        FlagStrategy
	ReliabilityStrategy ReliabilityStrategy
	GeoFormat           string

	VarParts      VarParts
	URLParameters string
	SectorField   string
	RaceGroup     string
	SexGroup      string
	VetGroup      string
}

// Operand is a resolved operand.
type Operand struct {
	Sources   []APIVariable
	Processor OperandProcessor
}

// Vintage is a data variable resolved for one geo type and vintage.
type Vintage struct {
	DisplayProperties

	VariableID string
	GeoTypeID  string
	VintageID  string
	Processor  Processor
	Operand1   Operand
	Operand2   *Operand
	Years      []string
	Datasets   []string
}

// Operand2Sources returns the sources of operand 2, or nil.
func (v Vintage) Operand2Sources() []APIVariable {
	if v.Operand2 == nil {
		return nil
	}
	return v.Operand2.Sources
}

// AllSources returns the sources of both operands.
func (v Vintage) AllSources() []APIVariable {
	out := make([]APIVariable, 0, len(v.Operand1.Sources)+len(v.Operand2Sources()))
	out = append(out, v.Operand1.Sources...)
	return append(out, v.Operand2Sources()...)
}

// IndustryBased reports whether any source is broken down by industry.
func (v Vintage) IndustryBased() bool {
	for _, s := range v.AllSources() {
		if s.SectorField != "" {
			return true
		}
	}
	return false
}

// IndustryLikeID returns the key a computed estimate for the selected
// industry is stored under.
func (v Vintage) IndustryLikeID(selectedIndustryID string) string {
	if v.IndustryBased() {
		return selectedIndustryID
	}
	return record.NoIndustryID
}

// PlaceMappingEntry tells whether a place is queried as a county
// subdivision.
type PlaceMappingEntry struct {
	County   string `yaml:"COUNTY,omitempty"`
	ACSGeoID string `yaml:"ACS_GEOID,omitempty"`
}

// USState is a state or territory.
type USState struct {
	Name         string `yaml:"name"`
	Abbreviation string `yaml:"abbreviation"`
	FIPS         string `yaml:"FIPS"`
}

// DataAPIClientSettings are catalog-level settings of the data API client.
type DataAPIClientSettings struct {
	// GeoTypeReplacementsForPath renames geo types per endpoint path.
	GeoTypeReplacementsForPath map[string]map[string]string `yaml:"geoTypeReplacementsForPath"`
}
