package profiles

// Field names reported as missing.
const (
	FieldCompanyName = "company_name"
	FieldProductName = "product_name"
	FieldCategory    = "product_category"
	FieldCapacity    = "production_capacity"
	FieldCity        = "city"
)

// Completeness summarizes how much of the core profile is known.
type Completeness struct {
	Percent  int      `json:"percent"`
	Missing  []string `json:"missing"`
	Complete bool     `json:"complete"`
}

// CheckCompleteness inspects the five fields the assistant asks for before
// switching the conversation to export planning.
func CheckCompleteness(p BusinessProfile) Completeness {
	checks := []struct {
		field string
		ok    bool
	}{
		{FieldCompanyName, Meaningful(p.CompanyName)},
		{FieldProductName, Meaningful(p.Product.Name)},
		{FieldCategory, Meaningful(p.Category)},
		{FieldCapacity, p.Capacity.Amount > 0},
		{FieldCity, Meaningful(p.Location.City)},
	}

	missing := []string{}
	for _, c := range checks {
		if !c.ok {
			missing = append(missing, c.field)
		}
	}
	filled := len(checks) - len(missing)
	return Completeness{
		Percent:  filled * 100 / len(checks),
		Missing:  missing,
		Complete: len(missing) == 0,
	}
}
