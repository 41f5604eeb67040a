package domain

import (
	"strings"
	"time"
)

// MaxAddressesPerUser caps how many shipping addresses one user may own.
const MaxAddressesPerUser = 5

// ShippingAddress is a delivery address owned by a user. JSON names are the
// ones existing clients send and expect.
type ShippingAddress struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"usuario_id"`
	Street     string    `json:"direccion"`
	City       string    `json:"ciudad"`
	Region     string    `json:"estado_provincia"`
	PostalCode string    `json:"codigo_postal"`
	Country    string    `json:"pais"`
	IsDefault  bool      `json:"es_predeterminada"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AddressWithUser is an address joined with its owner's minimal projection.
type AddressWithUser struct {
	ShippingAddress
	User *UserSummary `json:"usuario,omitempty"`
}

// AddressWithUserDetail is an address joined with its owner's full projection.
type AddressWithUserDetail struct {
	ShippingAddress
	User *UserDetail `json:"usuario,omitempty"`
}

// NewAddress carries the fields required to create an address.
type NewAddress struct {
	UserID     int64
	Street     string
	City       string
	Region     string
	PostalCode string
	Country    string
}

// Normalize trims surrounding whitespace from every text field.
func (n *NewAddress) Normalize() {
	n.Street = strings.TrimSpace(n.Street)
	n.City = strings.TrimSpace(n.City)
	n.Region = strings.TrimSpace(n.Region)
	n.PostalCode = strings.TrimSpace(n.PostalCode)
	n.Country = strings.TrimSpace(n.Country)
}

// MissingFields lists, by JSON name, every required field that is empty.
func (n NewAddress) MissingFields() []string {
	var missing []string
	check := func(empty bool, name string) {
		if empty {
			missing = append(missing, name)
		}
	}
	check(n.UserID == 0, "usuario_id")
	check(n.Street == "", "direccion")
	check(n.City == "", "ciudad")
	check(n.Region == "", "estado_provincia")
	check(n.PostalCode == "", "codigo_postal")
	check(n.Country == "", "pais")
	return missing
}

// AddressPatch is a partial update. Nil fields are left unchanged.
type AddressPatch struct {
	Street     *string
	City       *string
	Region     *string
	PostalCode *string
	Country    *string
}

// Normalize trims every supplied field in place.
func (p *AddressPatch) Normalize() {
	for _, f := range []*string{p.Street, p.City, p.Region, p.PostalCode, p.Country} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

// AddressFilter narrows ListAll by exact match. Empty fields do not filter.
type AddressFilter struct {
	City    string
	Region  string
	Country string
}

// Normalize trims every filter value.
func (f *AddressFilter) Normalize() {
	f.City = strings.TrimSpace(f.City)
	f.Region = strings.TrimSpace(f.Region)
	f.Country = strings.TrimSpace(f.Country)
}

// Active returns the non-empty filters keyed by their query parameter name.
func (f AddressFilter) Active() map[string]string {
	active := make(map[string]string, 3)
	if f.City != "" {
		active["ciudad"] = f.City
	}
	if f.Region != "" {
		active["estado_provincia"] = f.Region
	}
	if f.Country != "" {
		active["pais"] = f.Country
	}
	return active
}
