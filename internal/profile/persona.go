// Package profile holds the records exchanged between discovery, scoring and filtering:
// candidates found on the web, the buyer personas they are matched against and the ICP.
package profile

import "strings"

// Persona is a buyer role profile. Titles are ordered by priority.
type Persona struct {
	Name     string   `json:"name" mapstructure:"name" validate:"required"`
	Titles   []string `json:"titles" mapstructure:"titles" validate:"required,min=1,dive,required"`
	Keywords []string `json:"keywords" mapstructure:"keywords"`
	Goals    []string `json:"goals" mapstructure:"goals"`
	Pains    []string `json:"pains" mapstructure:"pains"`
	KPIs     []string `json:"kpis" mapstructure:"kpis"`
}

// ICP describes the ideal customer company.
type ICP struct {
	CompanyName   string         `json:"company_name" mapstructure:"company-name"`
	Industry      string         `json:"industry" mapstructure:"industry"`
	SubIndustries []string       `json:"sub_industries" mapstructure:"sub-industries"`
	Firmographics map[string]any `json:"firmographics" mapstructure:"firmographics"`
	TechStack     map[string]any `json:"tech_stack" mapstructure:"tech-stack"`
	ValueProps    []string       `json:"value_props" mapstructure:"value-props"`
	PainPoints    []string       `json:"pain_points" mapstructure:"pain-points"`
}

type Personas []*Persona

func (p Personas) Names() []string {
	names := make([]string, 0, len(p))
	for _, persona := range p {
		names = append(names, persona.Name)
	}
	return names
}

func (p Personas) FindByName(name string) *Persona {
	for _, persona := range p {
		if strings.EqualFold(strings.TrimSpace(persona.Name), strings.TrimSpace(name)) {
			return persona
		}
	}
	return nil
}
