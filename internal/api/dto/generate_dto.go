package dto

import "encoding/json"

// StringList accepts either a single JSON string or an array of strings,
// matching the permissive issueIds contract.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		*s = values
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*s = StringList{value}
	return nil
}

// GenerateTestCasesRequest is the inbound payload for test-case generation.
// Per-request API keys override environment defaults.
type GenerateTestCasesRequest struct {
	IssueID      string     `json:"issueId"`
	IssueIDs     StringList `json:"issueIds"`
	Description  string     `json:"description"`
	Model        string     `json:"model"`
	Cases        int        `json:"cases"`
	LinearAPIKey string     `json:"linearApiKey"`
	OpenAIAPIKey string     `json:"openaiApiKey"`
}

// GenerateTestCasesResponse carries the fixed CSV header and generated rows.
type GenerateTestCasesResponse struct {
	Header string `json:"header"`
	CSV    string `json:"csv"`
}

// EnvStatusResponse reports which default credentials the environment holds.
type EnvStatusResponse struct {
	HasOpenAI bool `json:"hasOpenAI"`
	HasLinear bool `json:"hasLinear"`
}
