package domain

// CartItem is a value copy of a package taken when it was added, so later
// catalog edits never change an in-progress cart.
type CartItem struct {
	ServiceID   string  `json:"serviceId" firestore:"serviceId"`
	ServiceName string  `json:"serviceName" firestore:"serviceName"`
	PackageID   string  `json:"packageId" firestore:"packageId"`
	PackageName string  `json:"packageName" firestore:"packageName"`
	Price       float64 `json:"price" firestore:"price"`
	Duration    string  `json:"duration" firestore:"duration"`
}

type Cart struct {
	Items []CartItem `json:"items"`
}

// Add snapshots pkgID of svc and appends it. The same package may be added
// more than once.
func (c *Cart) Add(svc Service, pkgID string) (CartItem, error) {
	pkg, ok := svc.Package(pkgID)
	if !ok {
		return CartItem{}, ErrPackageNotInService
	}

	item := CartItem{
		ServiceID:   svc.ID,
		ServiceName: svc.Title,
		PackageID:   pkg.ID,
		PackageName: pkg.Name,
		Price:       pkg.Price,
		Duration:    pkg.Duration,
	}
	c.Items = append(c.Items, item)

	return item, nil
}

// Remove drops the item at index. Out of range is a no-op and reports false.
func (c *Cart) Remove(index int) bool {
	if index < 0 || index >= len(c.Items) {
		return false
	}

	c.Items = append(c.Items[:index:index], c.Items[index+1:]...)
	return true
}

func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Price
	}
	return total
}

func (c *Cart) Len() int {
	return len(c.Items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Snapshot returns a copy of the items that does not alias the cart.
func (c *Cart) Snapshot() []CartItem {
	out := make([]CartItem, len(c.Items))
	copy(out, c.Items)
	return out
}
