package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/tidwall/gjson"

	"catalogsync/internal/domain"
)

var errPriceNotNumber = errors.New("variants.0.price must be a number")

// Commerce pushes products to the payment/commerce platform. Its API only
// accepts a price that is a JSON number.
type Commerce struct {
	Latency time.Duration
}

func (Commerce) Platform() domain.Platform { return domain.Commerce }

type commerceVariant struct {
	Price float64 `json:"price"`
}

type commercePayload struct {
	Product struct {
		Title       string            `json:"title"`
		BodyHTML    string            `json:"body_html"`
		ProductType string            `json:"product_type"`
		Variants    []commerceVariant `json:"variants"`
	} `json:"product"`
}

func (a Commerce) Sync(ctx context.Context, p domain.Product, _ Request) Outcome {
	if !p.Price.IsNumeric() {
		return Failure{Reason: ReasonInvalidPriceType}
	}
	var body commercePayload
	body.Product.Title = p.Name
	body.Product.BodyHTML = p.Description
	body.Product.ProductType = p.Category
	body.Product.Variants = []commerceVariant{{Price: p.Price.Amount}}
	raw, err := json.Marshal(body)
	if err != nil {
		return Failure{Reason: ReasonInvalidPriceType}
	}

	if !wait(ctx, a.Latency) {
		return canceled()
	}
	if err := acceptCommercePayload(raw); err != nil {
		if errors.Is(err, errPriceNotNumber) {
			return Failure{Reason: ReasonInvalidPriceType}
		}
		return Failure{Reason: ReasonRemoteRejected}
	}
	return Success{
		ExternalID: "commerce_" + p.ID,
		Message:    "Product published to commerce store",
	}
}

// acceptCommercePayload is the mocked remote endpoint's request validation.
func acceptCommercePayload(raw []byte) error {
	if !gjson.ValidBytes(raw) {
		return errors.New("malformed payload")
	}
	if !gjson.GetBytes(raw, "product.title").Exists() {
		return errors.New("product.title is required")
	}
	price := gjson.GetBytes(raw, "product.variants.0.price")
	if price.Type != gjson.Number {
		return errPriceNotNumber
	}
	if price.Float() <= 0 {
		return errors.New("variants.0.price must be positive")
	}
	return nil
}
