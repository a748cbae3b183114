package production

import "strings"

// UOMDomain groups unit-of-measure spellings that describe the same physical count.
type UOMDomain int

const (
	// DomainOther covers units the engine cannot convert (kg, m, pcs, ...).
	DomainOther UOMDomain = iota
	// DomainSheets covers printed sheets before conversion.
	DomainSheets
	// DomainCartons covers converted cartons, boxes, and cases.
	DomainCartons
)

func (d UOMDomain) String() string {
	switch d {
	case DomainSheets:
		return "sheets"
	case DomainCartons:
		return "cartons"
	default:
		return "other"
	}
}

// "cartoon" is a common misspelling in shop-floor data and is kept deliberately.
var uomAliases = map[string]UOMDomain{
	"sheet":   DomainSheets,
	"sheets":  DomainSheets,
	"sht":     DomainSheets,
	"shts":    DomainSheets,
	"sh":      DomainSheets,
	"carton":  DomainCartons,
	"cartons": DomainCartons,
	"cartoon": DomainCartons,
	"ctn":     DomainCartons,
	"ctns":    DomainCartons,
	"box":     DomainCartons,
	"boxes":   DomainCartons,
	"bx":      DomainCartons,
	"case":    DomainCartons,
	"cases":   DomainCartons,
}

// ClassifyUOM maps a raw unit string onto its domain.
func ClassifyUOM(raw string) UOMDomain {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.TrimSuffix(key, ".")
	if domain, ok := uomAliases[key]; ok {
		return domain
	}
	return DomainOther
}

// IsSheetUOM reports whether the unit denotes sheets.
func IsSheetUOM(raw string) bool { return ClassifyUOM(raw) == DomainSheets }

// IsCartonUOM reports whether the unit denotes cartons or boxes.
func IsCartonUOM(raw string) bool { return ClassifyUOM(raw) == DomainCartons }
