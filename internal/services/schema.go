package services

import "github.com/santhosh-tekuri/jsonschema/v5"

// Expected reply shapes. Fields are typed but not required; missing keys are
// filled with defaults after decoding.
var (
	stringListSchema = jsonschema.MustCompileString("string_list.json", `{
		"type": "array",
		"items": {"type": "string"}
	}`)

	jdInfoSchema = jsonschema.MustCompileString("jd_info.json", `{
		"type": "object",
		"properties": {
			"company":  {"type": ["string", "null"]},
			"position": {"type": ["string", "null"]},
			"location": {"type": ["string", "null"]},
			"salary":   {"type": ["string", "null"]},
			"skills":   {"type": ["array", "null"], "items": {"type": "string"}}
		}
	}`)

	interviewAnalysisSchema = jsonschema.MustCompileString("interview_analysis.json", `{
		"type": "object",
		"properties": {
			"matchScore":  {"type": "number"},
			"strengths":   {"type": ["array", "null"], "items": {"type": "string"}},
			"weaknesses":  {"type": ["array", "null"], "items": {"type": "string"}},
			"suggestions": {"type": ["array", "null"], "items": {"type": "string"}},
			"summary":     {"type": ["string", "null"]}
		}
	}`)
)
