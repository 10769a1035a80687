package page

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"cartwidget/internal/dom"
	"cartwidget/internal/models"
	serviceerrors "cartwidget/internal/service"

	"github.com/go-playground/validator/v10"
)

// TriggerInput is the raw product description carried by the trigger's
// data attributes.
type TriggerInput struct {
	ProductID       string `json:"productId" validate:"required"`
	ProductName     string `json:"productName" validate:"required"`
	ProductPrice    string `json:"productPrice" validate:"required"`
	ProductImageURL string `json:"productImageUrl" validate:"required"`
}

var validate = validator.New()

// ReadTrigger collects the trigger's data attributes. Absent attributes are
// left empty and rejected later by ParseTrigger.
func ReadTrigger(el dom.Element) TriggerInput {
	get := func(name string) string {
		v, _ := el.Data(name)
		return v
	}

	return TriggerInput{
		ProductID:       get(dom.DataProductID),
		ProductName:     get(dom.DataProductName),
		ProductPrice:    get(dom.DataProductPrice),
		ProductImageURL: get(dom.DataProductImageURL),
	}
}

// ParseTrigger turns trigger attributes into a line item with quantity 1.
// The product id is used verbatim as the cart key. The image reference is
// percent-decoded the way decodeURIComponent does it: a literal '+'
// survives and escapes that do not decode to UTF-8 are rejected.
func ParseTrigger(in TriggerInput) (models.LineItem, error) {
	const op = "page.ParseTrigger"

	in.ProductPrice = strings.TrimSpace(in.ProductPrice)

	if err := validate.Struct(in); err != nil {
		return models.LineItem{}, fmt.Errorf("%s: %w: %v", op, serviceerrors.ErrInvalidInput, err)
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return models.LineItem{}, fmt.Errorf("%s: %w: blank product id", op, serviceerrors.ErrInvalidInput)
	}

	price, err := strconv.ParseFloat(in.ProductPrice, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return models.LineItem{}, fmt.Errorf("%s: %w: price %q is not a decimal", op, serviceerrors.ErrInvalidInput, in.ProductPrice)
	}

	image, err := url.PathUnescape(in.ProductImageURL)
	if err != nil {
		return models.LineItem{}, fmt.Errorf("%s: %w: image reference: %v", op, serviceerrors.ErrInvalidInput, err)
	}
	if !utf8.ValidString(image) {
		return models.LineItem{}, fmt.Errorf("%s: %w: image reference is not valid UTF-8", op, serviceerrors.ErrInvalidInput)
	}

	return models.LineItem{
		Id:       in.ProductID,
		Name:     in.ProductName,
		Price:    price,
		Image:    image,
		Quantity: 1,
	}, nil
}
