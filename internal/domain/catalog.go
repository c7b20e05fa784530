package domain

type RefKind string

const (
	KindDestination RefKind = "destination"
	KindHotel       RefKind = "hotel"
	KindCarRental   RefKind = "car_rental"
	KindPlace       RefKind = "place"
)

func (k RefKind) Valid() bool {
	switch k {
	case KindDestination, KindHotel, KindCarRental, KindPlace:
		return true
	}
	return false
}

// CatalogRef points at an entity owned by the external catalog service.
// The core treats it as opaque and resolves it on demand.
type CatalogRef struct {
	Kind RefKind `json:"kind"`
	ID   string  `json:"id"`
}

// CatalogEntry is the minimal slice of a catalog record the core needs:
// existence, a display name, and the listed price used as costing default.
// ListedPrice is per night for hotels, per day for car rentals, per visit
// for places; zero when the catalog lists none.
type CatalogEntry struct {
	Ref         CatalogRef
	Name        string
	ListedPrice float64
}
