package wizard

// Wizard kinds
const (
	KindContract = "contract"
	KindVehicle  = "vehicle"
)

// ContractSteps returns the step sequence for contract creation
func ContractSteps() []Step {
	return []Step{
		{
			Name:     "rental_details",
			Required: []string{"start_date", "end_date", "contract_type", "insurance_type"},
			Validate: func(values map[string]interface{}) []FieldError {
				start, okStart := DateValue(values, "start_date")
				end, okEnd := DateValue(values, "end_date")
				if !okStart {
					return []FieldError{{Field: "start_date", Message: "start_date must be a YYYY-MM-DD date"}}
				}
				if !okEnd {
					return []FieldError{{Field: "end_date", Message: "end_date must be a YYYY-MM-DD date"}}
				}
				if !end.After(start) {
					return []FieldError{{Field: "end_date", Message: "end_date must be after start_date"}}
				}
				return nil
			},
		},
		{
			Name:     "customer",
			Required: []string{"customer_id"},
		},
		{
			Name:     "vehicle",
			Required: []string{"vehicle_id"},
		},
		{
			Name:     "pricing",
			Required: []string{"daily_rate", "total_amount"},
			Validate: func(values map[string]interface{}) []FieldError {
				if rate, ok := FloatValue(values, "daily_rate"); !ok || rate <= 0 {
					return []FieldError{{Field: "daily_rate", Message: "daily_rate must be a positive number"}}
				}
				if total, ok := FloatValue(values, "total_amount"); !ok || total <= 0 {
					return []FieldError{{Field: "total_amount", Message: "total_amount must be a positive number"}}
				}
				return nil
			},
		},
		{
			Name:     "inspector",
			Required: []string{"inspector_name"},
		},
		{
			Name: "documents",
		},
	}
}

// VehicleSteps returns the step sequence for vehicle creation
func VehicleSteps() []Step {
	return []Step{
		{
			Name:     "identity",
			Required: []string{"plate_number", "make", "model"},
		},
		{
			Name:     "registration",
			Required: []string{"year", "branch_id"},
			Validate: func(values map[string]interface{}) []FieldError {
				if year, ok := IntValue(values, "year"); !ok || year < 1950 {
					return []FieldError{{Field: "year", Message: "year must be a valid model year"}}
				}
				return nil
			},
		},
		{
			Name:     "pricing",
			Required: []string{"daily_rate"},
			Validate: func(values map[string]interface{}) []FieldError {
				if rate, ok := FloatValue(values, "daily_rate"); !ok || rate <= 0 {
					return []FieldError{{Field: "daily_rate", Message: "daily_rate must be a positive number"}}
				}
				return nil
			},
		},
		{
			Name: "documents",
		},
	}
}

// StepsFor returns the declared sequence for a wizard kind
func StepsFor(kind string) ([]Step, bool) {
	switch kind {
	case KindContract:
		return ContractSteps(), true
	case KindVehicle:
		return VehicleSteps(), true
	default:
		return nil, false
	}
}
