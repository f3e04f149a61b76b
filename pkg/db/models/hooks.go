package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IDs are minted client side so the sqlite test driver behaves the same as
// Postgres.

func (c *Company) BeforeCreate(*gorm.DB) error          { ensureID(&c.ID); return nil }
func (p *PricingTier) BeforeCreate(*gorm.DB) error      { ensureID(&p.ID); return nil }
func (c *Category) BeforeCreate(*gorm.DB) error         { ensureID(&c.ID); return nil }
func (p *Product) BeforeCreate(*gorm.DB) error          { ensureID(&p.ID); return nil }
func (f *FinishOption) BeforeCreate(*gorm.DB) error     { ensureID(&f.ID); return nil }
func (u *UpholsteryOption) BeforeCreate(*gorm.DB) error { ensureID(&u.ID); return nil }
func (c *Cart) BeforeCreate(*gorm.DB) error             { ensureID(&c.ID); return nil }
func (c *CartItem) BeforeCreate(*gorm.DB) error         { ensureID(&c.ID); return nil }
func (q *Quote) BeforeCreate(*gorm.DB) error            { ensureID(&q.ID); return nil }
func (q *QuoteItem) BeforeCreate(*gorm.DB) error        { ensureID(&q.ID); return nil }
func (a *AdminUser) BeforeCreate(*gorm.DB) error        { ensureID(&a.ID); return nil }

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
