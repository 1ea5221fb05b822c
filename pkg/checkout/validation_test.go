package checkout

import "testing"

func TestIsEmailValid(t *testing.T) {
	valid := []string{
		"buyer@example.com",
		"a@b.co",
		"  padded@example.com  ",
		"first.last+tag@sub.example.org",
	}
	for _, email := range valid {
		if !IsEmailValid(email) {
			t.Fatalf("expected %q to be valid", email)
		}
	}

	invalid := []string{
		"",
		"plain",
		"no@dot",
		"two@@example.com",
		"spaces in@example.com",
		"@example.com",
		"user@.com",
	}
	for _, email := range invalid {
		if IsEmailValid(email) {
			t.Fatalf("expected %q to be invalid", email)
		}
	}
}

func TestShippingAddressValid(t *testing.T) {
	full := ShippingAddress{
		FullName: "Ada Lovelace",
		Address:  "1 Court St",
		City:     "Springfield",
		State:    "IL",
		ZipCode:  "62704",
	}
	if !full.Valid() {
		t.Fatal("expected address without country to be valid")
	}

	withCountry := full
	withCountry.Country = "US"
	if !withCountry.Valid() {
		t.Fatal("expected address with country to be valid")
	}

	blankCity := full
	blankCity.City = "   "
	if blankCity.Valid() {
		t.Fatal("whitespace-only field should invalidate the address")
	}
}

func TestPickupContactValid(t *testing.T) {
	if (PickupContact{FullName: "Ada", PhoneNumber: "555-0100"}).Valid() == false {
		t.Fatal("expected complete pickup contact to be valid")
	}
	if (PickupContact{FullName: "Ada"}).Valid() {
		t.Fatal("missing phone should invalidate pickup contact")
	}
}

func TestCardDetailsValid(t *testing.T) {
	card := CardDetails{
		Number:     "4242 4242 4242 4242",
		Expiry:     "12/27",
		CVV:        "123",
		HolderName: "Ada Lovelace",
	}
	if !card.Valid() {
		t.Fatal("expected well-formed card to be valid")
	}

	tests := []struct {
		name   string
		mutate func(*CardDetails)
	}{
		{"short number", func(c *CardDetails) { c.Number = "4242 4242 4242" }},
		{"long number", func(c *CardDetails) { c.Number = "4242 4242 4242 4242 4" }},
		{"bad expiry", func(c *CardDetails) { c.Expiry = "13-27" }},
		{"bad cvv", func(c *CardDetails) { c.CVV = "12" }},
		{"blank holder", func(c *CardDetails) { c.HolderName = "  " }},
	}
	for _, tt := range tests {
		mutated := card
		tt.mutate(&mutated)
		if mutated.Valid() {
			t.Fatalf("%s: expected invalid card", tt.name)
		}
	}
}

func TestFormatCardNumber(t *testing.T) {
	if got := FormatCardNumber("4242424242424242999"); got != "4242 4242 4242 4242" {
		t.Fatalf("expected capped grouped number, got %q", got)
	}
	if got := FormatCardNumber("42a42"); got != "4242" {
		t.Fatalf("expected non-digits stripped, got %q", got)
	}
	if got := FormatCardNumber(""); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestFormatExpiry(t *testing.T) {
	if got := FormatExpiry("1227"); got != "12/27" {
		t.Fatalf("expected slash insertion, got %q", got)
	}
	if got := FormatExpiry("1"); got != "1" {
		t.Fatalf("expected partial month untouched, got %q", got)
	}
	if got := FormatExpiry("12/279"); got != "12/27" {
		t.Fatalf("expected capped expiry, got %q", got)
	}
}
