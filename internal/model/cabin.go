package model

// CabinClass is the fare/service tier of a cabin section.
type CabinClass string

const (
	CabinFirst          CabinClass = "first"
	CabinBusiness       CabinClass = "business"
	CabinPremiumEconomy CabinClass = "premium_economy"
	CabinEconomy        CabinClass = "economy"
)

// CabinDisplayOrder is the order cabins appear in a seat map, nose to tail.
var CabinDisplayOrder = []CabinClass{CabinFirst, CabinBusiness, CabinPremiumEconomy, CabinEconomy}

// DisplayRank returns the sort position of the cabin class in a seat map.
// Unknown classes sort after the known cabins.
func (c CabinClass) DisplayRank() int {
	for i, known := range CabinDisplayOrder {
		if c == known {
			return i
		}
	}
	return len(CabinDisplayOrder)
}

// BoardingGroup derives the coarse boarding group for a cabin class. Premium
// cabins board first; anything unrecognized falls into the last group.
func (c CabinClass) BoardingGroup() string {
	switch c {
	case CabinFirst:
		return "1"
	case CabinBusiness:
		return "2"
	case CabinPremiumEconomy:
		return "3"
	case CabinEconomy:
		return "4"
	default:
		return "5"
	}
}

// Seat position types within a row.
const (
	PositionWindow = "window"
	PositionMiddle = "middle"
	PositionAisle  = "aisle"
)

// Price tier assigned to seats that do not declare one.
const DefaultPriceTier = "standard"
