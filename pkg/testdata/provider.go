// Package testdata supplies the input values flows consume: credentials,
// addresses and product picks, kept apart from flow logic. Registration
// flows mutate server-side state, so generated emails must be unique per
// attempt without relying on any shared external source.
package testdata

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/storefront-qa/storecheck/pkg/core"
)

// Customer is a set of account credentials.
type Customer struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Address is a shipping address as the checkout form wants it.
type Address struct {
	FirstName string
	LastName  string
	Line1     string
	City      string
	Postcode  string
	Country   string
	Zone      string
}

// Product is one product pick with a quantity.
type Product struct {
	Name     string
	Quantity int
}

// Scenario is the full data set for one flow execution. Invalid marks data
// that is deliberately broken: a failure the app reports for it is the
// expected outcome, not noise, and ExpectedWarning names the message the
// app must show.
type Scenario struct {
	ID              string
	Customer        Customer
	Address         Address
	Products        []Product
	Invalid         bool
	ExpectedWarning string
}

// Scenario IDs the provider knows.
const (
	RegistrationValid         = "registration/valid"
	RegistrationExistingEmail = "registration/existing-email"
	RegistrationNoAgreement   = "registration/no-privacy-agreement"
	RegistrationBlank         = "registration/blank-fields"
	LoginValid                = "login/valid"
	LoginWrongPassword        = "login/wrong-password"
	CartSingleProduct         = "cart/single-product"
	CartMultiProduct          = "cart/multi-product"
	CheckoutHappyPath         = "checkout/happy-path"
)

// The registered account the deployed storefront is seeded with.
var seededCustomer = Customer{
	FirstName: "Valid",
	LastName:  "Customer",
	Email:     "validEmail@gmail.com",
	Password:  "ValidPass123",
}

var defaultAddress = Address{
	FirstName: "John",
	LastName:  "Doe",
	Line1:     "123 Testing Street",
	City:      "Testville",
	Postcode:  "CT1 2AB",
	Country:   "United Kingdom",
	Zone:      "Kent",
}

// Provider hands out scenario data. Generated values are derived from the
// wall clock and a process-local counter, so repeated and parallel runs do
// not collide without coordinating through anything external.
type Provider struct {
	counter atomic.Uint64
	now     func() time.Time
}

// NewProvider creates a provider.
func NewProvider() *Provider {
	return &Provider{now: time.Now}
}

// UniqueEmail returns an email address no prior or concurrent run has used.
func (p *Provider) UniqueEmail() string {
	n := p.counter.Add(1)
	return fmt.Sprintf("qa.%d.%d@storecheck.test", p.now().UnixNano(), n)
}

// Get returns the data set for a scenario ID. Unknown IDs are a
// configuration error.
func (p *Provider) Get(scenarioID string) (Scenario, error) {
	switch scenarioID {
	case RegistrationValid:
		return Scenario{
			ID: scenarioID,
			Customer: Customer{
				FirstName: "Nora",
				LastName:  "Fleet",
				Email:     p.UniqueEmail(),
				Password:  "Str0ngPass!23",
			},
		}, nil

	case RegistrationExistingEmail:
		return Scenario{
			ID: scenarioID,
			Customer: Customer{
				FirstName: "Nora",
				LastName:  "Fleet",
				Email:     seededCustomer.Email,
				Password:  "Str0ngPass!23",
			},
			Invalid:         true,
			ExpectedWarning: "Warning: E-Mail Address is already registered!",
		}, nil

	case RegistrationNoAgreement:
		return Scenario{
			ID: scenarioID,
			Customer: Customer{
				FirstName: "Nora",
				LastName:  "Fleet",
				Email:     p.UniqueEmail(),
				Password:  "Str0ngPass!23",
			},
			Invalid:         true,
			ExpectedWarning: "Warning: You must agree to the Privacy Policy!",
		}, nil

	case RegistrationBlank:
		return Scenario{
			ID:              scenarioID,
			Customer:        Customer{},
			Invalid:         true,
			ExpectedWarning: "First Name must be between 1 and 32 characters!",
		}, nil

	case LoginValid:
		return Scenario{ID: scenarioID, Customer: seededCustomer}, nil

	case LoginWrongPassword:
		return Scenario{
			ID: scenarioID,
			Customer: Customer{
				Email:    seededCustomer.Email,
				Password: "WrongPass",
			},
			Invalid:         true,
			ExpectedWarning: "Warning: No match for E-Mail Address and/or Password.",
		}, nil

	case CartSingleProduct:
		return Scenario{
			ID:       scenarioID,
			Customer: seededCustomer,
			Products: []Product{{Name: "HP LP3065", Quantity: 1}},
		}, nil

	case CartMultiProduct:
		return Scenario{
			ID:       scenarioID,
			Customer: seededCustomer,
			Products: []Product{{Name: "iMac", Quantity: 1}, {Name: "MacBook Air", Quantity: 1}},
		}, nil

	case CheckoutHappyPath:
		return Scenario{
			ID:       scenarioID,
			Customer: seededCustomer,
			Address:  defaultAddress,
			Products: []Product{{Name: "HP LP3065", Quantity: 1}},
		}, nil
	}

	return Scenario{}, core.ErrInvalidConfig.WithMessage("unknown scenario %q", scenarioID)
}
