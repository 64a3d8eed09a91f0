package application

import (
	"encoding/json"

	"github.com/Skufu/lipidcare/internal/domain"
)

// requiredKeys must be present and non-null in an analysis request. A zero
// value is a measurement; an absent key is not.
var requiredKeys = []string{"ldl", "hdl", "triglycerides", "blood_glucose", "age", "gender"}

// AnalyzeRequest is the flat wire form of an analysis: lipid values and
// patient fields side by side. Gender is accepted in any client spelling.
type AnalyzeRequest struct {
	domain.LipidPanel
	domain.PatientProfile
	Gender    string                  `json:"gender"`
	Extracted *domain.ExtractedReport `json:"extracted_data"`

	present map[string]bool
}

func (r *AnalyzeRequest) UnmarshalJSON(b []byte) error {
	type plain AnalyzeRequest
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(b, &keys); err != nil {
		return err
	}
	*r = AnalyzeRequest(p)
	r.present = make(map[string]bool, len(keys))
	for k, v := range keys {
		if string(v) != "null" {
			r.present[k] = true
		}
	}
	return nil
}

// Input checks that every required key was sent and converts the request.
func (r AnalyzeRequest) Input() (AnalyzeInput, error) {
	var missing []string
	for _, k := range requiredKeys {
		if !r.present[k] {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return AnalyzeInput{}, domain.MissingFields(missing)
	}

	sex, err := domain.ParseSex(r.Gender)
	if err != nil {
		return AnalyzeInput{}, &domain.ValidationError{Field: "gender", Reason: "must be male, female or unspecified"}
	}
	profile := r.PatientProfile
	profile.Sex = sex
	return AnalyzeInput{Panel: r.LipidPanel, Profile: profile, Extracted: r.Extracted}, nil
}
