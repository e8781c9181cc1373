// Package lead holds the canonical lead field record and the merge logic
// that accumulates extracted information over a conversation.
package lead

import "strings"

// Fields is the canonical lead record. Every attribute is optional; an empty
// string means "not yet known". Extraction output is mapped into this fixed
// key set so misspelled or unknown labels never leak into the profile.
type Fields struct {
	Name            string `json:"name,omitempty"`
	Company         string `json:"company,omitempty"`
	Email           string `json:"email,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Needs           string `json:"needs,omitempty"`
	Budget          string `json:"budget,omitempty"`
	ProductInterest string `json:"product_interest,omitempty"`
	Timeline        string `json:"timeline,omitempty"`
}

// fieldSynonyms maps free-text labels (Spanish and English, as the extraction
// model returns them) to canonical keys. Lookups are lowercased first.
var fieldSynonyms = map[string]string{
	"nombre":           "name",
	"name":             "name",
	"empresa":          "company",
	"company":          "company",
	"email":            "email",
	"correo":           "email",
	"teléfono":         "phone",
	"telefono":         "phone",
	"phone":            "phone",
	"necesidades":      "needs",
	"needs":            "needs",
	"problemas":        "needs",
	"presupuesto":      "budget",
	"budget":           "budget",
	"producto":         "product_interest",
	"product_interest": "product_interest",
	"servicio":         "product_interest",
	"plazo":            "timeline",
	"timeline":         "timeline",
	"tiempo":           "timeline",
}

// MapFields normalizes raw extraction output into the canonical key set.
// Unknown labels and empty values are dropped silently.
func MapFields(raw map[string]string) map[string]string {
	out := make(map[string]string, len(raw))
	for key, value := range raw {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		canonical, ok := fieldSynonyms[strings.ToLower(strings.TrimSpace(key))]
		if !ok {
			continue
		}
		out[canonical] = value
	}
	return out
}

// Merge overlays incoming canonical values onto f and returns the result.
// Every non-empty incoming value replaces the current one; keys absent from
// incoming keep their current value. A known field is never erased, and
// applying the same incoming map twice yields the same result.
func (f Fields) Merge(incoming map[string]string) Fields {
	set := func(dst *string, key string) {
		if v, ok := incoming[key]; ok && v != "" {
			*dst = v
		}
	}
	set(&f.Name, "name")
	set(&f.Company, "company")
	set(&f.Email, "email")
	set(&f.Phone, "phone")
	set(&f.Needs, "needs")
	set(&f.Budget, "budget")
	set(&f.ProductInterest, "product_interest")
	set(&f.Timeline, "timeline")
	return f
}

// Map returns the known fields as a canonical-key map, omitting empty values.
func (f Fields) Map() map[string]string {
	out := make(map[string]string, 8)
	put := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}
	put("name", f.Name)
	put("company", f.Company)
	put("email", f.Email)
	put("phone", f.Phone)
	put("needs", f.Needs)
	put("budget", f.Budget)
	put("product_interest", f.ProductInterest)
	put("timeline", f.Timeline)
	return out
}

// Empty reports whether no field is known yet.
func (f Fields) Empty() bool {
	return f == Fields{}
}

// HasContact reports whether the lead can be reached (email or phone known).
func (f Fields) HasContact() bool {
	return f.Email != "" || f.Phone != ""
}
