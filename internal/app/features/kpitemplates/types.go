// internal/app/features/kpitemplates/types.go
package kpitemplates

import (
	"github.com/dalemusser/coachhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/coachhub/internal/app/system/paging"
	"github.com/dalemusser/coachhub/internal/domain/models"
)

type templateInput struct {
	Name        string `json:"name" validate:"notblank,max=200" label:"Name"`
	Description string `json:"description" validate:"max=2000" label:"Description"`
	Unit        string `json:"unit" validate:"notblank,max=50" label:"Unit"`
	Language    string `json:"language" validate:"omitempty,max=16" label:"Language"`
	IsActive    *bool  `json:"is_active" label:"Active"`
}

// model converts the input, defaulting new templates to active.
func (in templateInput) model() models.KPITemplate {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return models.KPITemplate{
		Name:        htmlsanitize.PlainText(in.Name),
		Description: htmlsanitize.PlainText(in.Description),
		Unit:        htmlsanitize.PlainText(in.Unit),
		Language:    htmlsanitize.PlainText(in.Language),
		IsActive:    active,
	}
}

type listResponse struct {
	Items []models.KPITemplate `json:"items"`
	Page  paging.Info          `json:"page"`
}
