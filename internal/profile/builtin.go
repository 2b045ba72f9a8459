package profile

import (
	"regexp"

	"github.com/Abaaza/pricelistextractor/internal/units"
)

// 各表共用的缩写展开，各表在其后追加专用项
var commonAbbreviations = []Replacement{
	{" ne ", " not exceeding "},
	{" n.e. ", " not exceeding "},
	{" incl ", " including "},
	{" excl ", " excluding "},
	{" approx ", " approximately "},
	{" max ", " maximum "},
	{" min ", " minimum "},
	{" thk ", " thick "},
	{" dia ", " diameter "},
}

var commonRegexFixes = []RegexFix{
	{regexp.MustCompile(`(\d+)thk`), "${1}mm thick"},
	{regexp.MustCompile(`(\d+)dp`), "${1}m deep"},
	{regexp.MustCompile(`(\d+)w\b`), "${1}m wide"},
}

func withCommon(extra ...Replacement) []Replacement {
	merged := make([]Replacement, 0, len(commonAbbreviations)+len(extra))
	merged = append(merged, commonAbbreviations...)
	merged = append(merged, extra...)
	return merged
}

var groundworksProfile = &Profile{
	Name:               "Groundworks",
	Category:           "Groundworks",
	DefaultSubcategory: "General Groundworks",
	StartRow:           9,
	MinFilledCells:     2,
	CodeCol:            0,
	DescCol:            1,
	DescColCount:       3,
	MinDescLen:         5,
	UnitCols:           []int{2, 3, 4, 5},
	PreferredRateCols:  []int{5, 6, 7, 8},
	RateScanStart:      3,
	RateScanEnd:        10,
	DefaultRateCol:     5,
	MaxRate:            1000000,
	Keywords: []string{
		"excavat", "fill", "disposal", "earthwork", "trench",
		"foundation", "hardcore", "topsoil", "subsoil", "rock",
		"compact", "level", "grade", "strip", "cart away",
	},
	Abbreviations: withCommon(
		Replacement{" exc ", " excavation "},
		Replacement{" disp ", " disposal "},
		Replacement{" fdn ", " foundation "},
		Replacement{" u/s ", " underside "},
		Replacement{" c/away", " cart away"},
		Replacement{" dp ", " deep "},
	),
	RegexFixes: commonRegexFixes,
	SubcategoryRules: []SubcategoryRule{
		{Match: []string{"excavat", "reduced level"}, Name: "Reduced Level Excavation"},
		{Match: []string{"excavat", "foundation"}, Name: "Foundation Excavation"},
		{Match: []string{"excavat", "trench"}, Name: "Trench Excavation"},
		{Match: []string{"excavat", "basement"}, Name: "Basement Excavation"},
		{Match: []string{"excavat"}, Name: "General Excavation"},
		{Match: []string{"fill", "hardcore"}, Name: "Hardcore Filling"},
		{Match: []string{"fill", "selected"}, Name: "Selected Fill"},
		{Match: []string{"fill", "imported"}, Name: "Imported Fill"},
		{Match: []string{"fill"}, Name: "General Filling"},
		{Match: []string{"disposal"}, Name: "Disposal"},
		{Match: []string{"cart away"}, Name: "Disposal"},
		{Match: []string{"compact"}, Name: "Compaction"},
		{Match: []string{"level"}, Name: "Leveling and Grading"},
		{Match: []string{"grade"}, Name: "Leveling and Grading"},
		{Match: []string{"strip"}, Name: "Surface Preparation"},
		{Match: []string{"rock"}, Name: "Rock Excavation"},
		{Match: []string{"support"}, Name: "Earthwork Support"},
		{Match: []string{"shore"}, Name: "Earthwork Support"},
	},
	UnitInferRules: []units.InferRule{
		{Keywords: []string{"surface", "strip"}, Unit: "m2"},
		{Keywords: []string{"excavat", "disposal", "fill", "earthwork"}, Unit: "m3"},
		{Keywords: []string{"trench", "drain", "edge", "kerb"}, Unit: "m"},
		{Keywords: []string{"area", "slab", "bed"}, Unit: "m2"},
		{Keywords: []string{"volume", "bulk", "mass"}, Unit: "m3"},
	},
	KeywordTerms: []string{
		"excavation", "filling", "disposal", "hardcore", "topsoil",
		"foundation", "trench", "basement", "rock", "compact",
	},
}

var rcWorksProfile = &Profile{
	Name:               "RC Works",
	Category:           "RC Works",
	DefaultSubcategory: "General RC Works",
	StartRow:           9,
	MinFilledCells:     2,
	CodeCol:            0,
	DescCol:            1,
	DescColCount:       3,
	MinDescLen:         5,
	UnitCols:           []int{2, 3, 4, 5},
	PreferredRateCols:  []int{5, 6, 7, 8},
	RateScanStart:      3,
	RateScanEnd:        10,
	DefaultRateCol:     5,
	MaxRate:            1000000,
	Keywords: []string{
		"concrete", "formwork", "reinforc", "rebar", "mesh", "shutter",
		"precast", "pour", "slab", "beam", "column", "wall",
	},
	Abbreviations: withCommon(
		Replacement{" conc ", " concrete "},
		Replacement{" reinf ", " reinforcement "},
		Replacement{" fwk ", " formwork "},
		Replacement{" rc ", " reinforced concrete "},
		Replacement{" c/w ", " complete with "},
	),
	RegexFixes: append([]RegexFix{
		{regexp.MustCompile(`\bC(\d{2})\b`), "Grade C${1}"},
	}, commonRegexFixes...),
	SubcategoryRules: []SubcategoryRule{
		{Match: []string{"concrete", "beam"}, Name: "Concrete Beams"},
		{Match: []string{"concrete", "column"}, Name: "Concrete Columns"},
		{Match: []string{"concrete", "slab"}, Name: "Concrete Slabs"},
		{Match: []string{"in-situ"}, Name: "In-situ Concrete"},
		{Match: []string{"in situ"}, Name: "In-situ Concrete"},
		{Match: []string{"formwork"}, Name: "Formwork"},
		{Match: []string{"shutter"}, Name: "Formwork"},
		{Match: []string{"reinforc"}, Name: "Reinforcement"},
		{Match: []string{"rebar"}, Name: "Reinforcement"},
		{Match: []string{"mesh"}, Name: "Reinforcement"},
		{Match: []string{"precast"}, Name: "Precast Concrete"},
		{Match: []string{"post-tension"}, Name: "Post-tensioning"},
		{Match: []string{"prestress"}, Name: "Post-tensioning"},
		{Match: []string{"sundries"}, Name: "Concrete Sundries"},
		{Match: []string{"concrete"}, Name: "In-situ Concrete"},
	},
	UnitInferRules: []units.InferRule{
		{Keywords: []string{"formwork", "shutter", "slab", "soffit"}, Unit: "m2"},
		{Keywords: []string{"concrete", "pour"}, Unit: "m3"},
		{Keywords: []string{"reinforc", "rebar"}, Unit: "tonnes"},
		{Keywords: []string{"mesh"}, Unit: "m2"},
	},
	KeywordTerms: []string{
		"concrete", "formwork", "reinforcement", "precast", "slab",
		"beam", "column", "wall", "mesh",
	},
}

var drainageProfile = &Profile{
	Name:               "Drainage",
	Category:           "Drainage",
	DefaultSubcategory: "General Drainage",
	StartRow:           0,
	MinFilledCells:     2,
	CodeCol:            0,
	DescCol:            1,
	DescColCount:       3,
	MinDescLen:         5,
	UnitCols:           []int{5, 2, 3, 4},
	PreferredRateCols:  []int{14, 19, 5, 6},
	RateScanStart:      3,
	RateScanEnd:        20,
	DefaultRateCol:     14,
	MaxRate:            1000000,
	Keywords: []string{
		"excavat", "trench", "pipe", "backfill", "dispose",
		"manhole", "gulley", "gully", "drain", "sewer",
	},
	Abbreviations: withCommon(
		Replacement{" exc ", " excavation "},
		Replacement{" dp ", " deep "},
	),
	RegexFixes: commonRegexFixes,
	SubcategoryRules: []SubcategoryRule{
		{Match: []string{"manhole"}, Name: "Manholes"},
		{Match: []string{"gulley"}, Name: "Gullies"},
		{Match: []string{"gully"}, Name: "Gullies"},
		{Match: []string{"below ground"}, Name: "Below Ground Drainage"},
		{Match: []string{"above ground"}, Name: "Above Ground Drainage"},
		{Match: []string{"pipe"}, Name: "Pipework"},
		{Match: []string{"excavat"}, Name: "Excavation"},
		{Match: []string{"backfill"}, Name: "Backfilling"},
	},
	UnitInferRules: []units.InferRule{
		{Keywords: []string{"pipe", "trench", "drain", "sewer"}, Unit: "m"},
		{Keywords: []string{"manhole", "gulley", "gully"}, Unit: "nr"},
		{Keywords: []string{"excavat", "backfill"}, Unit: "m3"},
	},
	KeywordTerms: []string{
		"excavate", "trench", "pipe", "backfill", "dispose",
		"manhole", "gulley", "drainage", "sewer", "invert", "depth",
	},
	// 表头+区间行模式仅出现在 Drainage 表，整表一个窗口
	RangeWindows:   []RowWindow{{Start: 0, End: 100000}},
	RangeCols:      [3]int{2, 3, 4},
	HeaderMinLen:   20,
	HeaderKeywords: []string{"excavat", "trench", "pipe", "backfill", "drain", "sewer"},
	RangeJoinLabel: "depth to invert",
}

var servicesProfile = &Profile{
	Name:               "Services",
	Category:           "Services",
	DefaultSubcategory: "General Services",
	StartRow:           9,
	MinFilledCells:     3,
	CodeCol:            0,
	DescCol:            1,
	DescColCount:       4,
	MinDescLen:         5,
	UnitCols:           []int{2, 3, 4, 5},
	PreferredRateCols:  []int{5, 6, 7, 8},
	RateScanStart:      3,
	RateScanEnd:        12,
	DefaultRateCol:     5,
	MaxRate:            1000000,
	Keywords: []string{
		"electrical", "plumbing", "hvac", "mechanical", "cable",
		"conduit", "wire", "socket", "switch", "light", "power",
		"distribution", "panel", "breaker", "transformer",
		"water supply", "hot water", "cold water", "gas",
		"duct", "vent", "pump", "boiler", "radiator", "sanitary",
	},
	Abbreviations: withCommon(
		Replacement{" m&e ", " mechanical and electrical "},
		Replacement{" dist ", " distribution "},
		Replacement{" lv ", " low voltage "},
		Replacement{" hv ", " high voltage "},
	),
	RegexFixes: commonRegexFixes,
	SubcategoryRules: []SubcategoryRule{
		{Match: []string{"fire"}, Name: "Fire Systems"},
		{Match: []string{"electrical"}, Name: "Electrical Installation"},
		{Match: []string{"cable"}, Name: "Electrical Installation"},
		{Match: []string{"socket"}, Name: "Electrical Installation"},
		{Match: []string{"light"}, Name: "Electrical Installation"},
		{Match: []string{"hvac"}, Name: "HVAC"},
		{Match: []string{"duct"}, Name: "HVAC"},
		{Match: []string{"vent"}, Name: "HVAC"},
		{Match: []string{"plumbing"}, Name: "Plumbing"},
		{Match: []string{"water"}, Name: "Plumbing"},
		{Match: []string{"sanitary"}, Name: "Plumbing"},
		{Match: []string{"mechanical"}, Name: "Mechanical Services"},
		{Match: []string{"pump"}, Name: "Mechanical Services"},
		{Match: []string{"boiler"}, Name: "Mechanical Services"},
	},
	UnitInferRules: []units.InferRule{
		{Keywords: []string{"cable", "conduit", "pipe", "duct"}, Unit: "m"},
		{Keywords: []string{"socket", "switch", "light", "pump", "boiler", "radiator"}, Unit: "nr"},
	},
	KeywordTerms: []string{
		"electrical", "plumbing", "hvac", "mechanical", "cable",
		"conduit", "socket", "lighting", "power", "water",
	},
}

var externalWorksProfile = &Profile{
	Name:               "External Works",
	Category:           "External Works",
	DefaultSubcategory: "External Works",
	StartRow:           9,
	MinFilledCells:     1,
	CodeCol:            0,
	DescCol:            1,
	DescColCount:       2,
	MinDescLen:         5,
	UnitCols:           []int{4, 2, 3},
	PreferredRateCols:  []int{5, 6, 7, 8},
	RateScanStart:      5,
	RateScanEnd:        15,
	DefaultRateCol:     5,
	MaxRate:            1000000,
	Keywords: []string{
		"paving", "kerb", "edging", "fence", "gate", "tarmac",
		"asphalt", "bollard", "sign", "marking", "landscap",
	},
	Abbreviations: withCommon(
		Replacement{" dp ", " deep "},
	),
	RegexFixes: commonRegexFixes,
	SubcategoryRules: []SubcategoryRule{
		{Match: []string{"paving", "block"}, Name: "Block Paving"},
		{Match: []string{"paving", "slab"}, Name: "Slab Paving"},
		{Match: []string{"paving"}, Name: "Paving"},
		{Match: []string{"paved"}, Name: "Paving"},
		{Match: []string{"kerb"}, Name: "Kerbs and Edging"},
		{Match: []string{"edging"}, Name: "Kerbs and Edging"},
		{Match: []string{"fence"}, Name: "Fencing"},
		{Match: []string{"fencing"}, Name: "Fencing"},
		{Match: []string{"gate"}, Name: "Gates and Barriers"},
		{Match: []string{"tarmac"}, Name: "Tarmac and Asphalt"},
		{Match: []string{"asphalt"}, Name: "Tarmac and Asphalt"},
		{Match: []string{"gulley"}, Name: "Surface Drainage"},
		{Match: []string{"channel"}, Name: "Surface Drainage"},
		{Match: []string{"bollard"}, Name: "Street Furniture"},
		{Match: []string{"sign"}, Name: "Signage"},
		{Match: []string{"marking"}, Name: "Road Markings"},
		{Match: []string{"concrete"}, Name: "Concrete Works"},
	},
	UnitInferRules: []units.InferRule{
		{Keywords: []string{"paving", "surfacing", "tarmac"}, Unit: "m2"},
		{Keywords: []string{"kerb", "edging", "channel", "fence", "fencing"}, Unit: "m"},
		{Keywords: []string{"bollard", "sign", "gate", "post"}, Unit: "nr"},
	},
	KeywordTerms: []string{
		"paving", "kerb", "edging", "fence", "gate",
		"tarmac", "asphalt", "concrete", "bollard", "drainage",
	},
}

var underpinningProfile = &Profile{
	Name:               "Underpinning",
	Category:           "Underpinning",
	DefaultSubcategory: "General Underpinning",
	StartRow:           9,
	MinFilledCells:     2,
	CodeCol:            0,
	DescCol:            1,
	DescColCount:       3,
	MinDescLen:         5,
	UnitCols:           []int{2, 3, 4, 5},
	PreferredRateCols:  []int{5, 6, 7, 8},
	RateScanStart:      3,
	RateScanEnd:        10,
	DefaultRateCol:     5,
	MaxRate:            1000000,
	Keywords: []string{
		"underpin", "needle", "prop", "pit", "shoring", "support",
		"excavat", "concrete", "mass fill",
	},
	Abbreviations: withCommon(
		Replacement{" exc ", " excavation "},
		Replacement{" conc ", " concrete "},
	),
	RegexFixes: commonRegexFixes,
	SubcategoryRules: []SubcategoryRule{
		{Match: []string{"excavat"}, Name: "Underpinning Excavation"},
		{Match: []string{"concrete"}, Name: "Concrete Underpinning"},
		{Match: []string{"needle"}, Name: "Needling and Propping"},
		{Match: []string{"prop"}, Name: "Needling and Propping"},
		{Match: []string{"shoring"}, Name: "Temporary Support"},
		{Match: []string{"support"}, Name: "Temporary Support"},
	},
	UnitInferRules: []units.InferRule{
		{Keywords: []string{"excavat", "concrete"}, Unit: "m3"},
		{Keywords: []string{"underpin"}, Unit: "m"},
		{Keywords: []string{"needle", "prop"}, Unit: "nr"},
	},
	KeywordTerms: []string{
		"underpinning", "excavation", "concrete", "needle", "prop", "support",
	},
}

// genericProfile 未识别工作表的兜底参数，类目由 ForSheet 按表名填充
var genericProfile = &Profile{
	Name:               "Generic",
	Category:           "",
	DefaultSubcategory: "",
	StartRow:           9,
	MinFilledCells:     2,
	CodeCol:            0,
	DescCol:            1,
	DescColCount:       3,
	MinDescLen:         5,
	UnitCols:           []int{2, 3, 4, 5},
	PreferredRateCols:  []int{5, 6, 7, 8},
	RateScanStart:      3,
	RateScanEnd:        15,
	DefaultRateCol:     5,
	MaxRate:            1000000,
	Abbreviations:      withCommon(),
	RegexFixes:         commonRegexFixes,
}

var builtins = []*Profile{
	groundworksProfile,
	rcWorksProfile,
	drainageProfile,
	servicesProfile,
	externalWorksProfile,
	underpinningProfile,
}
