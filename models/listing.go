package models

// ListingSummary is one card scraped from a district results page.
// PriceValue, PostedDate and TimeRaw stay empty when the source text could
// not be parsed; only URL and CardID are required for a row to survive.
type ListingSummary struct {
	Title         string
	URL           string
	PriceRaw      string
	PriceValue    *float64
	PriceCurrency string
	LocationText  string
	PostedDateRaw string
	PostedDate    string // ISO yyyy-mm-dd
	TimeRaw       string // HH:MM
	CardID        string
	DistrictID    int
	DistrictName  string
}

// ListingDetail holds the attributes only available on a listing's own page.
type ListingDetail struct {
	CardID      string
	Area        *float64
	NumberRooms string
	Furniture   *bool
	Condition   string
	Date        string // ISO yyyy-mm-dd
}

// MergedListing is a summary row joined with its detail row, priced in the
// local currency for aggregation.
type MergedListing struct {
	CardID        string
	Title         string
	URL           string
	PriceValue    *float64
	PriceCurrency string
	PriceUZS      *float64
	Area          *float64
	NumberRooms   string
	Furniture     *bool
	Condition     string
	PricePerM2    *float64
	DistrictID    int
	DistrictName  string
}

// District is one collection scope on the site, keyed by the site's
// numeric district id.
type District struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

// DefaultDistricts is the fixed Tashkent district set used when no
// districts.yaml override is present.
func DefaultDistricts() []District {
	return []District{
		{26, "yakkasarai"},
		{25, "yunusabad"},
		{24, "shaykhantohur"},
		{23, "chilonzor"},
		{22, "yashnabad"},
		{21, "uchtepa"},
		{20, "almazar"},
		{19, "sergeli"},
		{18, "bektemir"},
		{13, "mirabad"},
		{12, "mirzo-ulugbek"},
	}
}
