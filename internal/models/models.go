package models

// LineItem is one distinct product in the cart.
type LineItem struct {
	Id       string  `json:"id" validate:"required"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity" validate:"gte=1"`
}

// Cart maps product id to its line item.
type Cart map[string]LineItem

func (c Cart) TotalUnits() int {
	total := 0
	for _, item := range c {
		total += item.Quantity
	}
	return total
}

func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for id, item := range c {
		out[id] = item
	}
	return out
}
