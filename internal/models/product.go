package models

import "time"

// Product represents a customizable catalog item
type Product struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	Price       float64           `json:"price"`
	Description string            `json:"description,omitempty"`
	ModelURL    string            `json:"model_url,omitempty"`
	Templates   []ProductTemplate `json:"templates"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ProductTemplate is a default personalization style offered for a product
type ProductTemplate struct {
	Font  string `json:"font"`
	Color string `json:"color"`
}

// Template defaults applied when a template omits a field
const (
	DefaultTemplateFont  = "Arial"
	DefaultTemplateColor = "#FFD700"
)

// ProductCreate is the payload for creating a product
type ProductCreate struct {
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	Price       float64           `json:"price"`
	Description string            `json:"description,omitempty"`
	ModelURL    string            `json:"model_url,omitempty"`
	Templates   []ProductTemplate `json:"templates,omitempty"`
}

// ProductUpdate is a partial update; nil fields are left unchanged
type ProductUpdate struct {
	Name        *string            `json:"name,omitempty"`
	Category    *string            `json:"category,omitempty"`
	Price       *float64           `json:"price,omitempty"`
	Description *string            `json:"description,omitempty"`
	ModelURL    *string            `json:"model_url,omitempty"`
	Templates   *[]ProductTemplate `json:"templates,omitempty"`
}

// IsEmpty reports whether the update changes nothing
func (u ProductUpdate) IsEmpty() bool {
	return u.Name == nil && u.Category == nil && u.Price == nil &&
		u.Description == nil && u.ModelURL == nil && u.Templates == nil
}

// Apply copies the set fields of u onto p
func (u ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.ModelURL != nil {
		p.ModelURL = *u.ModelURL
	}
	if u.Templates != nil {
		p.Templates = NormalizeTemplates(*u.Templates)
	}
}

// NormalizeTemplates fills default font and color and never returns nil
func NormalizeTemplates(in []ProductTemplate) []ProductTemplate {
	out := make([]ProductTemplate, 0, len(in))
	for _, t := range in {
		if t.Font == "" {
			t.Font = DefaultTemplateFont
		}
		if t.Color == "" {
			t.Color = DefaultTemplateColor
		}
		out = append(out, t)
	}
	return out
}

// ProductFilter narrows a product listing
type ProductFilter struct {
	Category string
	Skip     int
	Limit    int
}
