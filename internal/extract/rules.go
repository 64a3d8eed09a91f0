package extract

import (
	"regexp"
	"strings"
)

// Field names a value recoverable from a lipid lab report.
type Field string

const (
	TotalCholesterol Field = "total_cholesterol"
	LDL              Field = "ldl"
	HDL              Field = "hdl"
	Triglycerides    Field = "triglycerides"
	VLDL             Field = "vldl"
	NonHDL           Field = "non_hdl"
	TCHDLRatio       Field = "tc_hdl_ratio"
	LDLHDLRatio      Field = "ldl_hdl_ratio"
	TGHDLRatio       Field = "tg_hdl_ratio"
)

// Mandatory lists the values every usable report must carry.
var Mandatory = []Field{TotalCholesterol, LDL, HDL, Triglycerides}

// fieldRule ties a label matcher to the line holding its value. offset is
// counted from the label line; valid rejects implausible readings.
type fieldRule struct {
	field  Field
	match  func(label string) bool
	offset int
	valid  func(v float64) bool
}

// rules is scanned in order; the first matching rule claims a line.
// New report layouts are supported by adding rows here.
var rules = []fieldRule{
	{field: TotalCholesterol, match: exact("TOTAL CHOLESTEROL", "CHOLESTEROL, TOTAL", "CHOLESTEROL TOTAL", "SERUM CHOLESTEROL", "CHOLESTEROL"), offset: 1, valid: anyValue},
	{field: HDL, match: exact("HDL CHOLESTEROL", "HDL-CHOLESTEROL", "HDL CHOLESTEROL DIRECT", "CHOLESTEROL HDL", "HDL-C", "HDL"), offset: 1, valid: anyValue},
	{field: LDL, match: exact("LDL CHOLESTEROL", "LDL-CHOLESTEROL", "LDL CHOLESTEROL DIRECT", "LDL CHOLESTEROL CALCULATED", "CHOLESTEROL LDL", "LDL-C", "LDL"), offset: 1, valid: anyValue},
	{field: VLDL, match: exact("VLDL CHOLESTEROL", "VLDL CHOLESTEROL CALCULATED", "VLDL-C", "VLDL"), offset: 1, valid: anyValue},
	{field: NonHDL, match: exact("NON-HDL CHOLESTEROL", "NON HDL CHOLESTEROL", "NON-HDL CHOLESTEROL CALCULATED", "NON-HDL"), offset: 1, valid: anyValue},
	{field: Triglycerides, match: exact("TRIGLYCERIDES", "TRIGLYCERIDE", "SERUM TRIGLYCERIDES", "TG"), offset: 1, valid: anyValue},

	{field: LDLHDLRatio, match: ldlHDLRatio, offset: 1, valid: below(10)},
	{field: TGHDLRatio, match: tgHDLRatio, offset: 1, valid: below(15)},
	// Reports print a unit or flag marker between this label and its value.
	{field: TCHDLRatio, match: tcHDLRatio, offset: 2, valid: below(10)},
}

func exact(labels ...string) func(string) bool {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	return func(label string) bool {
		_, ok := set[label]
		return ok
	}
}

func ldlHDLRatio(label string) bool {
	return strings.Contains(label, "LDL") && strings.Contains(label, "/HDL") &&
		!strings.Contains(label, "CHOLESTEROL") && !strings.Contains(label, "VLDL")
}

func tgHDLRatio(label string) bool {
	return strings.Contains(label, "/HDL") &&
		(strings.Contains(label, "TG") || strings.Contains(label, "TRIG"))
}

func tcHDLRatio(label string) bool {
	if !strings.Contains(label, "/HDL") {
		return false
	}
	if strings.Contains(label, "LDL") || strings.Contains(label, "TG") || strings.Contains(label, "TRIG") {
		return false
	}
	return strings.Contains(label, "CHOL") || strings.Contains(label, "TC")
}

func anyValue(float64) bool { return true }

func below(limit float64) func(float64) bool {
	return func(v float64) bool { return v < limit }
}

var spaces = regexp.MustCompile(`\s+`)

// normalizeLabel uppercases, trims and collapses whitespace, and drops a
// trailing colon so "Hdl  Cholesterol :" matches "HDL CHOLESTEROL".
func normalizeLabel(line string) string {
	s := strings.ToUpper(strings.TrimSpace(line))
	s = spaces.ReplaceAllString(s, " ")
	s = strings.TrimSpace(strings.TrimRight(s, ":"))
	return s
}
