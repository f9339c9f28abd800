package domain

import (
	"errors"
	"testing"
	"time"
)

func TestRenderParseRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		sellerID string
		category Category
		item     string
		desc     string
		price    string
	}{
		{"tool", "123456789012345678", CategoryTool, "Drone Repair", "Fix props and gimbals", "$30"},
		{"service", "1", CategoryService, "Logo", "Custom logo design", "10 Credits"},
		{"consultation", "987654321", CategoryConsultation, "Tax advice", "One hour call", "€50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Render(tt.sellerID, tt.category, tt.item, tt.desc, tt.price)
			got, err := ParseSellerID(rec.Footer)
			if err != nil {
				t.Fatalf("ParseSellerID() error = %v", err)
			}
			if got != tt.sellerID {
				t.Errorf("ParseSellerID() = %q, want %q", got, tt.sellerID)
			}
		})
	}
}

func TestRenderShape(t *testing.T) {
	rec := Render("42", CategoryTool, "Drone Repair", "Fix props", "$30")

	if rec.Title != "Drone Repair" || rec.Description != "Fix props" {
		t.Errorf("title/body = %q/%q", rec.Title, rec.Description)
	}
	if len(rec.Fields) != 2 || rec.Fields[0].Name != FieldCategory || rec.Fields[1].Name != FieldPrice {
		t.Fatalf("fields = %+v, want [Category, Price]", rec.Fields)
	}
	if v, _ := rec.Field(FieldCategory); v != "Tool" {
		t.Errorf("Category = %q, want Tool", v)
	}
	if rec.Footer != "SellerID:42" {
		t.Errorf("Footer = %q, want SellerID:42", rec.Footer)
	}
}

func TestParseSellerIDFailures(t *testing.T) {
	tests := []struct {
		name   string
		footer string
		want   error
	}{
		{"empty footer", "", ErrMissingSellerReference},
		{"legacy anonymous footer", "Posted by an anonymous seller", ErrMissingSellerReference},
		{"marker without id", "SellerID:", ErrMalformedSellerReference},
		{"non digit id", "SellerID:abc", ErrMalformedSellerReference},
		{"mixed id", "SellerID:12ab", ErrMalformedSellerReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSellerID(tt.footer)
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseSellerID(%q) error = %v, want %v", tt.footer, err, tt.want)
			}
		})
	}
}

func TestNewListingValidation(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		sellerID string
		category Category
		item     string
		desc     string
		price    string
		wantErr  error
	}{
		{"valid", "42", CategoryTool, " Drone Repair ", "Fix", "$30", nil},
		{"blank name", "42", CategoryTool, "   ", "Fix", "$30", ErrInvalidListingField},
		{"blank description", "42", CategoryTool, "Drone", "", "$30", ErrInvalidListingField},
		{"blank price", "42", CategoryTool, "Drone", "Fix", "\t", ErrInvalidListingField},
		{"non numeric seller", "bob", CategoryTool, "Drone", "Fix", "$30", ErrInvalidListingField},
		{"unknown category", "42", Category("Weapon"), "Drone", "Fix", "$30", ErrUnknownCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewListing("id-1", tt.sellerID, tt.category, tt.item, tt.desc, tt.price, now)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewListing() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewListing() error = %v", err)
			}
			if l.Name != "Drone Repair" {
				t.Errorf("Name = %q, want trimmed value", l.Name)
			}
			if l.Status != StatusOpen {
				t.Errorf("Status = %v, want open", l.Status)
			}
		})
	}
}

func TestListingFromRecord(t *testing.T) {
	l, err := NewListing("id-7", "42", CategoryService, "Logo", "Vector logo", "$50", time.Now())
	if err != nil {
		t.Fatal(err)
	}

	got, err := ListingFromRecord(l.Record())
	if err != nil {
		t.Fatalf("ListingFromRecord() error = %v", err)
	}
	if got.ID != "id-7" || got.SellerID != "42" || got.Category != CategoryService || got.Price != "$50" {
		t.Errorf("ListingFromRecord() = %+v", got)
	}

	rec := l.Record()
	rec.Fields = rec.Fields[:1] // drop Price
	if _, err := ListingFromRecord(rec); !errors.Is(err, ErrMalformedListing) {
		t.Errorf("missing price error = %v, want ErrMalformedListing", err)
	}
}

func TestEscrowRecord(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 1, 0, 0, time.UTC)
	p := EscrowPayload{ItemName: "Drone Repair", ItemDescription: "Fix", Price: "$30", SellerID: "1", BuyerID: "2", CreatedAt: at}
	rec := p.Record()

	if rec.Title != "Trade Initiated" || rec.Footer != "Trade Bot" {
		t.Errorf("title/footer = %q/%q", rec.Title, rec.Footer)
	}
	wantNames := []string{"Item Name", "Item Description", "Price", "Seller", "Buyer"}
	if len(rec.Fields) != len(wantNames) {
		t.Fatalf("got %d fields, want %d", len(rec.Fields), len(wantNames))
	}
	for i, name := range wantNames {
		if rec.Fields[i].Name != name {
			t.Errorf("field %d = %q, want %q", i, rec.Fields[i].Name, name)
		}
	}
	if v, _ := rec.Field(FieldSeller); v != "<@1> (`1`)" {
		t.Errorf("Seller = %q", v)
	}
	if !rec.Timestamp.Equal(at) {
		t.Errorf("Timestamp = %v, want %v", rec.Timestamp, at)
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory(" " + string(c) + " ")
		if err != nil || got != c {
			t.Errorf("ParseCategory(%q) = %v, %v", c, got, err)
		}
	}
	if got, err := ParseCategory("tool"); err != nil || got != CategoryTool {
		t.Errorf("ParseCategory(tool) = %v, %v", got, err)
	}
	if _, err := ParseCategory("weapons"); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("ParseCategory(weapons) error = %v", err)
	}
}
