// Package extract turns the text lines an OCR engine recognised on a lipid
// lab report into typed values. It is a best-effort parser: well formatted
// reports parse fully, garbled ones yield partial results or an
// *domain.ExtractionError, never a panic.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Skufu/lipidcare/internal/domain"
)

// minFields is the number of recovered fields below which a report is
// considered unreadable.
const minFields = 4

// Result is a sparse record: unset fields are absent, never zero.
type Result struct {
	PatientName string            `json:"patient_name,omitempty"`
	Age         *int              `json:"age,omitempty"`
	Sex         string            `json:"sex,omitempty"`
	ReportDate  string            `json:"report_date,omitempty"`
	Values      map[Field]float64 `json:"values"`
	// Missing names mandatory lipid values that were not found.
	Missing []Field `json:"missing,omitempty"`
	RawText string  `json:"raw_text"`
}

var (
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)patient\s*name\s*[:\-]?\s*([A-Za-z][A-Za-z .']*)`),
		regexp.MustCompile(`(?i)(?:^|\n)\s*name\s*[:\-]\s*([A-Za-z][A-Za-z .']*)`),
		regexp.MustCompile(`(?i)\b(?:mr|mrs|ms|miss)\.?\s+([A-Za-z][A-Za-z .']*)`),
	}
	agePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bage\s*(?:/\s*(?:sex|gender))?\s*[:\-]?\s*(\d{1,3})\s*(?:y|yr|yrs|years)?\b`),
		regexp.MustCompile(`(?i)\b(\d{1,3})\s*(?:y|yrs|years)\s*/\s*(?:m|f|male|female)\b`),
	}
	sexPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:sex|gender)\s*[:\-]?\s*(male|female|m|f)\b`),
		regexp.MustCompile(`(?i)\bage\s*/\s*(?:sex|gender)\s*[:\-]?\s*\d{1,3}\s*(?:y|yr|yrs|years)?\s*/\s*(male|female|m|f)\b`),
		regexp.MustCompile(`(?i)\b\d{1,3}\s*(?:y|yrs|years)\s*/\s*(male|female|m|f)\b`),
	}
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:report(?:ed)?\s*(?:date|on)|collect(?:ed|ion)\s*(?:date|on)?|sample\s*date|date)\s*[:\-]?\s*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}|\d{4}-\d{2}-\d{2}|\d{1,2}[\s\-][A-Za-z]{3,9}[\s\-,]+\d{2,4})`),
	}
	nameStop = regexp.MustCompile(`(?i)\s+(?:age|sex|gender|date|id|ref|dob|mrn|uhid)\b.*$`)
)

// Extract parses recognised report lines into a Result.
func Extract(lines []string) (*Result, error) {
	raw := strings.Join(lines, "\n")
	if strings.TrimSpace(raw) == "" {
		return nil, &domain.ExtractionError{Reason: domain.ReasonNoText}
	}

	res := &Result{Values: map[Field]float64{}, RawText: raw}
	res.extractMetadata(raw)
	res.extractValues(lines)

	if res.fieldCount() < minFields {
		return nil, &domain.ExtractionError{
			Reason:  domain.ReasonInsufficient,
			RawText: raw,
			Partial: res.partial(),
		}
	}

	for _, f := range Mandatory {
		if _, ok := res.Values[f]; !ok {
			res.Missing = append(res.Missing, f)
		}
	}
	return res, nil
}

func (r *Result) extractMetadata(raw string) {
	if m := firstMatch(namePatterns, raw); m != "" {
		name := strings.TrimSpace(nameStop.ReplaceAllString(m, ""))
		if name != "" {
			r.PatientName = name
		}
	}
	if m := firstMatch(agePatterns, raw); m != "" {
		if age, err := strconv.Atoi(m); err == nil && age >= 1 && age <= 120 {
			r.Age = &age
		}
	}
	if m := firstMatch(sexPatterns, raw); m != "" {
		if sex, err := domain.ParseSex(m); err == nil {
			r.Sex = string(sex)
		}
	}
	if m := firstMatch(datePatterns, raw); m != "" {
		r.ReportDate = m
	}
}

func (r *Result) extractValues(lines []string) {
	for i, line := range lines {
		label := normalizeLabel(line)
		if label == "" {
			continue
		}
		rule, ok := matchRule(label)
		if !ok {
			continue
		}
		if _, set := r.Values[rule.field]; set {
			continue
		}
		j := i + rule.offset
		if j >= len(lines) {
			continue
		}
		v, ok := parseValue(lines[j])
		if !ok || !rule.valid(v) {
			continue
		}
		r.Values[rule.field] = v
	}
}

func matchRule(label string) (fieldRule, bool) {
	for _, rule := range rules {
		if rule.match(label) {
			return rule, true
		}
	}
	return fieldRule{}, false
}

func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); len(m) >= 2 {
			if v := strings.TrimSpace(m[1]); v != "" {
				return v
			}
		}
	}
	return ""
}

func (r *Result) fieldCount() int {
	n := len(r.Values)
	if r.PatientName != "" {
		n++
	}
	if r.Age != nil {
		n++
	}
	if r.Sex != "" {
		n++
	}
	if r.ReportDate != "" {
		n++
	}
	return n
}

func (r *Result) partial() map[string]any {
	out := make(map[string]any, r.fieldCount())
	if r.PatientName != "" {
		out["patient_name"] = r.PatientName
	}
	if r.Age != nil {
		out["age"] = *r.Age
	}
	if r.Sex != "" {
		out["sex"] = r.Sex
	}
	if r.ReportDate != "" {
		out["report_date"] = r.ReportDate
	}
	for f, v := range r.Values {
		out[string(f)] = v
	}
	return out
}

// Panel converts the result into a lipid panel with derived values filled
// in. A missing mandatory value is a validation failure.
func (r *Result) Panel() (domain.LipidPanel, error) {
	if len(r.Missing) > 0 {
		names := make([]string, len(r.Missing))
		for i, f := range r.Missing {
			names[i] = string(f)
		}
		return domain.LipidPanel{}, domain.MissingFields(names)
	}
	p := domain.LipidPanel{
		TotalCholesterol: r.Values[TotalCholesterol],
		LDL:              r.Values[LDL],
		HDL:              r.Values[HDL],
		Triglycerides:    r.Values[Triglycerides],
		VLDL:             r.Values[VLDL],
		NonHDL:           r.Values[NonHDL],
	}
	if v, ok := r.Values[TCHDLRatio]; ok {
		p.TCHDLRatio = &v
	}
	if v, ok := r.Values[LDLHDLRatio]; ok {
		p.LDLHDLRatio = &v
	}
	if v, ok := r.Values[TGHDLRatio]; ok {
		p.TGHDLRatio = &v
	}
	return p.Derive(), nil
}

// Report is the persisted form of the extraction.
func (r *Result) Report() *domain.ExtractedReport {
	values := make(map[string]float64, len(r.Values))
	for f, v := range r.Values {
		values[string(f)] = v
	}
	return &domain.ExtractedReport{
		PatientName: r.PatientName,
		Age:         r.Age,
		Sex:         r.Sex,
		ReportDate:  r.ReportDate,
		Values:      values,
	}
}
