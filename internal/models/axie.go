package models

// Class is an Axie class as reported by the marketplace API.
type Class string

const (
	ClassBeast   Class = "Beast"
	ClassAquatic Class = "Aquatic"
	ClassBird    Class = "Bird"
	ClassBug     Class = "Bug"
	ClassPlant   Class = "Plant"
	ClassReptile Class = "Reptile"
	ClassMech    Class = "Mech"
	ClassDawn    Class = "Dawn"
	ClassDusk    Class = "Dusk"
)

// AllClasses returns every valid Axie class.
func AllClasses() []Class {
	return []Class{
		ClassBeast,
		ClassAquatic,
		ClassBird,
		ClassBug,
		ClassPlant,
		ClassReptile,
		ClassMech,
		ClassDawn,
		ClassDusk,
	}
}

// IsValid reports whether c is one of the known classes.
func (c Class) IsValid() bool {
	for _, known := range AllClasses() {
		if c == known {
			return true
		}
	}
	return false
}

// Stats holds the four battle stats of an Axie.
type Stats struct {
	HP     int `json:"hp"`
	Speed  int `json:"speed"`
	Skill  int `json:"skill"`
	Morale int `json:"morale"`
}

// Total returns the sum of all four stats.
func (s Stats) Total() int {
	return s.HP + s.Speed + s.Skill + s.Morale
}

// Part is one of the six body parts of an Axie.
type Part struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Class        Class  `json:"class"`
	Type         string `json:"type"` // eyes, ears, mouth, horn, back, tail
	SpecialGenes string `json:"specialGenes,omitempty"`
}

// Auction holds the live listing information for an Axie, if it is for sale.
type Auction struct {
	CurrentPrice    string `json:"currentPrice"`
	CurrentPriceUSD string `json:"currentPriceUSD"`
	StartingPrice   string `json:"startingPrice,omitempty"`
	Duration        int64  `json:"duration,omitempty"`
	Seller          string `json:"seller,omitempty"`
}

// Axie is a marketplace snapshot of a single collectible. It is fetched per
// request and never persisted by this service.
type Axie struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Class      Class    `json:"class"`
	BreedCount int      `json:"breedCount"`
	Genes      string   `json:"genes,omitempty"`
	Image      string   `json:"image,omitempty"`
	Stats      Stats    `json:"stats"`
	Parts      []Part   `json:"parts"`
	Auction    *Auction `json:"auction,omitempty"`
}

// SaleRecord is a settled marketplace transfer used for confidence scoring.
type SaleRecord struct {
	AxieID      string  `json:"axie_id"`
	Class       Class   `json:"class"`
	PriceUSD    float64 `json:"price_usd"`
	Timestamp   int64   `json:"timestamp"`
	FromAddress string  `json:"from,omitempty"`
	ToAddress   string  `json:"to,omitempty"`
}
