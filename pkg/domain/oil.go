package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OilType enumerates the supported oil resource kinds.
type OilType string

const (
	OilTypePetrol OilType = "PETROL"
	OilTypeDiesel OilType = "DIESEL"
	OilTypeGas    OilType = "GAS"
)

func (t OilType) Valid() bool {
	switch t {
	case OilTypePetrol, OilTypeDiesel, OilTypeGas:
		return true
	}
	return false
}

// OilResource is a single oil price record. UserID and Email identify the
// authenticated user that created the record.
type OilResource struct {
	ID          uuid.UUID `json:"id"`
	Date        string    `json:"date"`
	Price       float64   `json:"price"`
	Type        OilType   `json:"type"`
	DocumentURL string    `json:"oil_document_url,omitempty"`
	UserID      string    `json:"userId,omitempty"`
	Email       string    `json:"email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OilCreate carries the client-supplied fields for a new oil resource.
type OilCreate struct {
	Date        string  `json:"date" binding:"required"`
	Price       float64 `json:"price"`
	Type        OilType `json:"type,omitempty"`
	DocumentURL string  `json:"oil_document_url,omitempty"`
}

func (c *OilCreate) Validate() error {
	if _, err := time.Parse("2006-01-02", c.Date); err != nil {
		return fmt.Errorf("invalid 'date' (use YYYY-MM-DD)")
	}
	if c.Price < 0 {
		return fmt.Errorf("invalid 'price' (must be >= 0)")
	}
	if c.Type == "" {
		c.Type = OilTypePetrol
	}
	if !c.Type.Valid() {
		return fmt.Errorf("invalid 'type' (use PETROL, DIESEL or GAS)")
	}
	return nil
}

// OilUpdate carries a partial update; nil fields are left unchanged.
type OilUpdate struct {
	Date        *string  `json:"date,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Type        *OilType `json:"type,omitempty"`
	DocumentURL *string  `json:"oil_document_url,omitempty"`
}

func (u *OilUpdate) Validate() error {
	if u.Date != nil {
		if _, err := time.Parse("2006-01-02", *u.Date); err != nil {
			return fmt.Errorf("invalid 'date' (use YYYY-MM-DD)")
		}
	}
	if u.Price != nil && *u.Price < 0 {
		return fmt.Errorf("invalid 'price' (must be >= 0)")
	}
	if u.Type != nil && !u.Type.Valid() {
		return fmt.Errorf("invalid 'type' (use PETROL, DIESEL or GAS)")
	}
	return nil
}

// Empty reports whether the update changes nothing.
func (u *OilUpdate) Empty() bool {
	return u.Date == nil && u.Price == nil && u.Type == nil && u.DocumentURL == nil
}

// CursorPage is a cursor-paginated list of oil resources. NextCursor is empty
// on the last page.
type CursorPage struct {
	Items      []OilResource `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
	Limit      int           `json:"limit"`
}
