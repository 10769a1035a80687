// Package codec converts a cart to and from the value kept under the
// "cart" key of the persistent store.
//
// The persisted form is a JSON object keyed by product id:
//
//	{"p1":{"id":"p1","name":"Widget","price":9.99,"image":"img.png","quantity":2}}
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"cartwidget/internal/models"
	serviceerrors "cartwidget/internal/service"

	"github.com/go-playground/validator/v10"
)

type record struct {
	Id       *string  `json:"id"`
	Name     *string  `json:"name"`
	Price    *float64 `json:"price"`
	Image    *string  `json:"image"`
	Quantity *int     `json:"quantity"`
}

var validate = validator.New()

func Encode(cart models.Cart) (string, error) {
	const op = "codec.Encode"

	// a nil cart must still encode as an object
	out := make(map[string]models.LineItem, len(cart))
	for id, item := range cart {
		out[id] = item
	}

	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(b), nil
}

// Decode parses a persisted cart. Any structural problem is reported as
// serviceerrors.ErrDeserialization.
func Decode(raw string) (models.Cart, error) {
	const op = "codec.Decode"

	trimmed := bytes.TrimSpace([]byte(raw))
	if bytes.Equal(trimmed, []byte("null")) {
		return models.Cart{}, nil
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%s: %w: expected a JSON object", op, serviceerrors.ErrDeserialization)
	}

	var records map[string]record
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, serviceerrors.ErrDeserialization, err)
	}

	cart := make(models.Cart, len(records))
	for key, rec := range records {
		item, err := rec.lineItem()
		if err != nil {
			return nil, fmt.Errorf("%s: %w: entry %q: %v", op, serviceerrors.ErrDeserialization, key, err)
		}
		if item.Id != key {
			return nil, fmt.Errorf("%s: %w: entry %q carries id %q", op, serviceerrors.ErrDeserialization, key, item.Id)
		}
		cart[key] = item
	}

	return cart, nil
}

func (r record) lineItem() (models.LineItem, error) {
	switch {
	case r.Id == nil:
		return models.LineItem{}, fmt.Errorf("missing field %q", "id")
	case r.Name == nil:
		return models.LineItem{}, fmt.Errorf("missing field %q", "name")
	case r.Price == nil:
		return models.LineItem{}, fmt.Errorf("missing field %q", "price")
	case r.Image == nil:
		return models.LineItem{}, fmt.Errorf("missing field %q", "image")
	case r.Quantity == nil:
		return models.LineItem{}, fmt.Errorf("missing field %q", "quantity")
	}

	item := models.LineItem{
		Id:       *r.Id,
		Name:     *r.Name,
		Price:    *r.Price,
		Image:    *r.Image,
		Quantity: *r.Quantity,
	}
	if err := validate.Struct(item); err != nil {
		return models.LineItem{}, err
	}

	return item, nil
}
