package domain

type ServiceCategory string

const (
	CategoryHome       ServiceCategory = "Home Cleaning"
	CategoryCommercial ServiceCategory = "Commercial"
	CategoryVehicle    ServiceCategory = "Vehicle Wash"
)

func (c ServiceCategory) Valid() bool {
	switch c {
	case CategoryHome, CategoryCommercial, CategoryVehicle:
		return true
	}
	return false
}

type Package struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Duration string   `json:"duration"`
	Features []string `json:"features"`
}

type Service struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    ServiceCategory `json:"category"`
	Packages    []Package       `json:"packages"`
}

func (s Service) Package(packageID string) (Package, bool) {
	for _, p := range s.Packages {
		if p.ID == packageID {
			return p, true
		}
	}
	return Package{}, false
}

// Catalog is the read-only table of offered services.
type Catalog struct {
	services []Service
}

func NewCatalog(services []Service) *Catalog {
	return &Catalog{services: services}
}

// DefaultCatalog returns the compiled-in service table.
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultServices)
}

// Services returns the services of one category, or all of them when
// category is empty.
func (c *Catalog) Services(category ServiceCategory) []Service {
	out := make([]Service, 0, len(c.services))
	for _, s := range c.services {
		if category == "" || s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

func (c *Catalog) Service(id string) (Service, error) {
	for _, s := range c.services {
		if s.ID == id {
			return s, nil
		}
	}
	return Service{}, ErrServiceNotFound
}

var defaultServices = []Service{
	{
		ID:          "home-deep",
		Title:       "Deep Home Cleaning",
		Description: "A comprehensive top-to-bottom cleaning service for your entire home.",
		Category:    CategoryHome,
		Packages: []Package{
			{ID: "h-basic", Name: "Basic Clean", Price: 99, Duration: "3-4 Hours", Features: []string{"Dusting", "Vacuuming", "Moping", "Bathroom Basic"}},
			{ID: "h-deep", Name: "Deep Clean", Price: 199, Duration: "6-8 Hours", Features: []string{"Deep Dusting", "Steam Cleaning", "Cabinet Interiors", "Appliance Exterior"}},
			{ID: "h-premium", Name: "Premium Spark", Price: 299, Duration: "Full Day", Features: []string{"Everything in Deep", "Upholstery Shampoo", "Window Polishing", "Sanitization"}},
		},
	},
	{
		ID:          "home-kitchen",
		Title:       "Kitchen Sanitization",
		Description: "Degreasing and sanitizing every corner of your kitchen.",
		Category:    CategoryHome,
		Packages: []Package{
			{ID: "k-std", Name: "Standard", Price: 89, Duration: "2 Hours", Features: []string{"Countertops", "Sink", "Floor", "Exterior Appliances"}},
			{ID: "k-deep", Name: "Deep Degrease", Price: 149, Duration: "4 Hours", Features: []string{"Chimney", "Inside Cabinets", "Behind Appliances", "Tile Scrubbing"}},
		},
	},
	{
		ID:          "comm-office",
		Title:       "Office Cleaning",
		Description: "Professional cleaning for workspaces to maintain a productive environment.",
		Category:    CategoryCommercial,
		Packages: []Package{
			{ID: "o-daily", Name: "Daily Maintenance", Price: 200, Duration: "Daily", Features: []string{"Trash Removal", "Desk Wipe", "Vacuum", "Restroom"}},
			{ID: "o-deep", Name: "Weekend Deep Clean", Price: 500, Duration: "1 Day", Features: []string{"Carpet Shampoo", "Glass Cleaning", "Deep Disinfection", "Floor Polishing"}},
		},
	},
	{
		ID:          "comm-store",
		Title:       "Shop & Store Cleaning",
		Description: "Keep your retail space inviting and spotless for customers.",
		Category:    CategoryCommercial,
		Packages: []Package{
			{ID: "s-basic", Name: "Store Spark", Price: 150, Duration: "3 Hours", Features: []string{"Glass Front", "Floor Mop", "Dusting", "Trash"}},
			{ID: "s-deep", Name: "Retail Deep", Price: 350, Duration: "6 Hours", Features: []string{"Floor Buffing", "High Dusting", "Storage Area", "Restroom"}},
		},
	},
	{
		ID:          "veh-car",
		Title:       "Premium Car Wash",
		Description: "Doorstep car washing and detailing services.",
		Category:    CategoryVehicle,
		Packages: []Package{
			{ID: "c-ext", Name: "Exterior Only", Price: 25, Duration: "45 Mins", Features: []string{"Foam Wash", "Tyre Polish", "Window Clean"}},
			{ID: "c-full", Name: "Full Detail", Price: 85, Duration: "2-3 Hours", Features: []string{"Interior Vacuum", "Seat Shampoo", "Wax Polish", "Engine Bay Clean"}},
		},
	},
	{
		ID:          "veh-bike",
		Title:       "Bike Spa",
		Description: "Complete foam wash and polish for motorcycles.",
		Category:    CategoryVehicle,
		Packages: []Package{
			{ID: "b-wash", Name: "Foam Wash", Price: 15, Duration: "30 Mins", Features: []string{"Pressure Wash", "Foam", "Dry"}},
			{ID: "b-detail", Name: "Detailing", Price: 40, Duration: "1.5 Hours", Features: []string{"Chain Lube", "Polish", "Scratch Removal"}},
		},
	},
}
