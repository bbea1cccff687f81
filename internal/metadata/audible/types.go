// Package audible provides a client for the Audible catalog API, used to
// fetch the audiobook counterpart of a book record.
package audible

// Region represents an Audible marketplace.
type Region string

const (
	RegionUS Region = "us"
	RegionUK Region = "uk"
	RegionDE Region = "de"
	RegionFR Region = "fr"
	RegionAU Region = "au"
	RegionCA Region = "ca"
	RegionJP Region = "jp"
	RegionIT Region = "it"
	RegionIN Region = "in"
	RegionES Region = "es"
)

var regionHosts = map[Region]string{
	RegionUS: "api.audible.com",
	RegionUK: "api.audible.co.uk",
	RegionDE: "api.audible.de",
	RegionFR: "api.audible.fr",
	RegionAU: "api.audible.com.au",
	RegionCA: "api.audible.ca",
	RegionJP: "api.audible.co.jp",
	RegionIT: "api.audible.it",
	RegionIN: "api.audible.in",
	RegionES: "api.audible.es",
}

// Host returns the API host for this region.
func (r Region) Host() string {
	if host, ok := regionHosts[r]; ok {
		return host
	}
	return regionHosts[RegionUS]
}

// Valid returns true if this is a recognized region.
func (r Region) Valid() bool {
	_, ok := regionHosts[r]
	return ok
}

// Raw API response types (internal)

type rawProduct struct {
	ASIN                 string              `json:"asin"`
	Title                string              `json:"title"`
	Subtitle             string              `json:"subtitle"`
	PublisherName        string              `json:"publisher_name"`
	ReleaseDate          string              `json:"release_date"`
	RuntimeLengthMin     int                 `json:"runtime_length_min"`
	MerchandisingSummary string              `json:"merchandising_summary"`
	Narrators            []rawContributor    `json:"narrators"`
	CategoryLadders      []rawCategoryLadder `json:"category_ladders"`
	Language             string              `json:"language"`
	Rating               *rawRating          `json:"rating"`
}

type rawContributor struct {
	ASIN string `json:"asin"`
	Name string `json:"name"`
}

type rawCategoryLadder struct {
	Ladder []rawCategory `json:"ladder"`
}

type rawCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type rawRating struct {
	OverallDistribution struct {
		DisplayAverageRating float64 `json:"display_average_rating"`
		NumReviews           int     `json:"num_reviews"`
	} `json:"overall_distribution"`
}
