package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

// Orders are created paid; no further transitions exist.
const OrderStatusPaymentDone OrderStatus = "Payment Done"

type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Name      string             `bson:"name" json:"name"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	UnitPrice float64            `bson:"unit_price" json:"unit_price"`
	Subtotal  float64            `bson:"subtotal" json:"subtotal"`
}

type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	TotalAmount float64            `bson:"total_amount" json:"total_amount"`
	Address     string             `bson:"address" json:"address"`
	Status      OrderStatus        `bson:"status" json:"status"`
	UserID      primitive.ObjectID `bson:"user" json:"user"`
	Products    []OrderItem        `bson:"products" json:"products"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// DeliveryDetails is the checkout form. Every field is required.
type DeliveryDetails struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	EmailAddress    string `json:"emailAddress"`
	PhoneNumber     string `json:"phoneNumber"`
	CompleteAddress string `json:"completeAddress"`
}

var ErrMissingDeliveryField = errors.New("missing delivery detail")

func (d DeliveryDetails) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"firstName", d.FirstName},
		{"lastName", d.LastName},
		{"emailAddress", d.EmailAddress},
		{"phoneNumber", d.PhoneNumber},
		{"completeAddress", d.CompleteAddress},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingDeliveryField, strings.Join(missing, ", "))
	}
	return nil
}

// Address flattens the details into the single string stored on an order.
func (d DeliveryDetails) Address() string {
	return fmt.Sprintf("%s %s, %s, %s, %s",
		strings.TrimSpace(d.FirstName),
		strings.TrimSpace(d.LastName),
		strings.TrimSpace(d.CompleteAddress),
		strings.TrimSpace(d.PhoneNumber),
		strings.TrimSpace(d.EmailAddress))
}
