package pack_test

import (
	"errors"
	"testing"

	"stayfit/internal/domain/i18n"
	"stayfit/internal/domain/pack"
)

func validPack() pack.Pack {
	return pack.Pack{
		ID:         "p1",
		StartPrice: 250,
		Category:   i18n.Text("Personal training", "تدريب شخصي"),
		Sessions: []pack.Offer{
			{ID: "o1", Price: 250, SessionCount: 4, ExpirationDays: 30},
			{ID: "o2", Price: 500, SessionCount: 10, ExpirationDays: 90},
		},
	}
}

// TestPack_Validate tests validation of Pack.
func TestPack_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *pack.Pack)
		wantErr error
	}{
		{"valid", func(p *pack.Pack) {}, nil},
		{"empty category", func(p *pack.Pack) { p.Category = i18n.Text("", "عربي") }, pack.ErrEmptyCategory},
		{"no offers", func(p *pack.Pack) { p.Sessions = nil }, pack.ErrNoOffers},
		{"negative start price", func(p *pack.Pack) { p.StartPrice = -1 }, pack.ErrNegativeStartPrice},
		{"zero offer price", func(p *pack.Pack) { p.Sessions[0].Price = 0 }, pack.ErrInvalidOfferPrice},
		{"zero session count", func(p *pack.Pack) { p.Sessions[1].SessionCount = 0 }, pack.ErrInvalidSessionCount},
		{"zero expiration", func(p *pack.Pack) { p.Sessions[1].ExpirationDays = 0 }, pack.ErrInvalidExpiration},
		{"duplicate offer ids", func(p *pack.Pack) { p.Sessions[1].ID = "o1" }, pack.ErrDuplicateOfferID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPack()
			tt.mutate(&p)
			err := p.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPack_FindOffer(t *testing.T) {
	p := validPack()
	o, err := p.FindOffer("o2")
	if err != nil {
		t.Fatalf("FindOffer: %v", err)
	}
	if o.Price != 500 || o.SessionCount != 10 || o.ExpirationDays != 90 {
		t.Errorf("FindOffer returned %+v", o)
	}
	if _, err := p.FindOffer("missing"); !errors.Is(err, pack.ErrOfferNotFound) {
		t.Errorf("FindOffer(missing) = %v, want ErrOfferNotFound", err)
	}
}

func TestPack_AssignOfferIDs(t *testing.T) {
	p := validPack()
	p.Sessions = append(p.Sessions, pack.Offer{Price: 900, SessionCount: 20, ExpirationDays: 180})
	n := 0
	p.AssignOfferIDs(func() string { n++; return "generated" })
	if n != 1 {
		t.Fatalf("expected 1 generated id, got %d", n)
	}
	if p.Sessions[0].ID != "o1" || p.Sessions[2].ID != "generated" {
		t.Errorf("unexpected ids: %+v", p.Sessions)
	}
}

func TestPack_LowestPrice(t *testing.T) {
	p := validPack()
	p.StartPrice = 0
	if got := p.LowestPrice(); got != 250 {
		t.Errorf("LowestPrice() = %v, want 250", got)
	}
}
