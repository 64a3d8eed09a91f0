package application

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/lipidcare/internal/domain"
)

func decodeRequest(t *testing.T, body string) AnalyzeRequest {
	t.Helper()
	var req AnalyzeRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

func TestAnalyzeRequestDecodesFlatPayload(t *testing.T) {
	req := decodeRequest(t, `{
		"patient_id": "p-9",
		"ldl": 150,
		"hdl": 40,
		"triglycerides": 180,
		"blood_glucose": 99,
		"age": 47,
		"gender": "M",
		"existing_conditions": ["hypertension"],
		"extracted_data": {"patient_name": "John Doe"}
	}`)

	in, err := req.Input()
	require.NoError(t, err)
	assert.Equal(t, "p-9", in.Profile.ID)
	assert.Equal(t, domain.SexMale, in.Profile.Sex)
	assert.True(t, in.Profile.HasHypertension())
	assert.Equal(t, 150.0, in.Panel.LDL)
	require.NotNil(t, in.Extracted)
	assert.Equal(t, "John Doe", in.Extracted.PatientName)
}

func TestAnalyzeRequestRequiresHDL(t *testing.T) {
	cases := map[string]string{
		"absent": `{"patient_id": "p-1", "ldl": 120, "triglycerides": 140, "blood_glucose": 90, "age": 50, "gender": "M"}`,
		"null":   `{"patient_id": "p-1", "ldl": 120, "hdl": null, "triglycerides": 140, "blood_glucose": 90, "age": 50, "gender": "M"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decodeRequest(t, body).Input()
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "hdl", verr.Field)
		})
	}
}

func TestAnalyzeRequestListsEveryMissingKey(t *testing.T) {
	_, err := decodeRequest(t, `{"patient_id": "p-1", "hdl": 40}`).Input()
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "ldl, triglycerides, blood_glucose, age, gender", verr.Field)
}

func TestAnalyzeRequestAcceptsExplicitZeroHDL(t *testing.T) {
	req := decodeRequest(t, `{"ldl": 120, "hdl": 0, "triglycerides": 140, "blood_glucose": 90, "age": 50, "gender": "F"}`)
	in, err := req.Input()
	require.NoError(t, err)
	assert.Equal(t, 0.0, in.Panel.HDL)
}

func TestAnalyzeRequestRejectsUnknownGender(t *testing.T) {
	req := decodeRequest(t, `{"ldl": 120, "hdl": 40, "triglycerides": 140, "blood_glucose": 90, "age": 50, "gender": "robot"}`)
	_, err := req.Input()
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "gender", verr.Field)
}
