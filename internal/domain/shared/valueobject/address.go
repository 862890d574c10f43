package valueobject

import (
	"fmt"
	"strings"
)

// Address is a value object representing a Brazilian delivery address
// It is immutable - construct via NewAddress
type Address struct {
	street       string
	number       string
	complement   string
	neighborhood string
	city         string
	state        string
	postalCode   string // CEP, digits only
}

// AddressOption is a functional option for configuring Address
type AddressOption func(*Address)

// WithComplement sets the address complement (apartment, suite, etc.)
func WithComplement(complement string) AddressOption {
	return func(a *Address) {
		a.complement = strings.TrimSpace(complement)
	}
}

// NewAddress creates a new Address
// Street, number, neighborhood, city, state and postal code are required;
// complement is optional
func NewAddress(street, number, neighborhood, city, state, postalCode string, opts ...AddressOption) (Address, error) {
	street = strings.TrimSpace(street)
	number = strings.TrimSpace(number)
	neighborhood = strings.TrimSpace(neighborhood)
	city = strings.TrimSpace(city)
	state = strings.ToUpper(strings.TrimSpace(state))

	if street == "" {
		return Address{}, fmt.Errorf("street cannot be empty")
	}
	if len(street) > 200 {
		return Address{}, fmt.Errorf("street cannot exceed 200 characters")
	}
	if number == "" {
		return Address{}, fmt.Errorf("street number cannot be empty")
	}
	if neighborhood == "" {
		return Address{}, fmt.Errorf("neighborhood cannot be empty")
	}
	if city == "" {
		return Address{}, fmt.Errorf("city cannot be empty")
	}
	if len(state) != 2 {
		return Address{}, fmt.Errorf("state must be a 2-letter UF code")
	}

	cep, err := NewCEP(postalCode)
	if err != nil {
		return Address{}, err
	}

	addr := Address{
		street:       street,
		number:       number,
		neighborhood: neighborhood,
		city:         city,
		state:        state,
		postalCode:   cep.String(),
	}

	for _, opt := range opts {
		opt(&addr)
	}

	return addr, nil
}

// MustNewAddress creates a new Address, panics on error
func MustNewAddress(street, number, neighborhood, city, state, postalCode string, opts ...AddressOption) Address {
	addr, err := NewAddress(street, number, neighborhood, city, state, postalCode, opts...)
	if err != nil {
		panic(err)
	}
	return addr
}

// Street returns the street name
func (a Address) Street() string { return a.street }

// Number returns the street number
func (a Address) Number() string { return a.number }

// Complement returns the address complement
func (a Address) Complement() string { return a.complement }

// Neighborhood returns the neighborhood
func (a Address) Neighborhood() string { return a.neighborhood }

// City returns the city
func (a Address) City() string { return a.city }

// State returns the 2-letter UF code
func (a Address) State() string { return a.state }

// PostalCode returns the CEP (digits only)
func (a Address) PostalCode() string { return a.postalCode }

// IsEmpty returns true if the address has no fields set
func (a Address) IsEmpty() bool {
	return a == Address{}
}

// String returns a single-line representation of the address
func (a Address) String() string {
	parts := []string{a.street + ", " + a.number}
	if a.complement != "" {
		parts = append(parts, a.complement)
	}
	parts = append(parts, a.neighborhood, a.city+"/"+a.state, FormatCEP(a.postalCode))
	return strings.Join(parts, " - ")
}
