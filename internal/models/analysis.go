package models

// JDInfo is the structured view of a job description.
type JDInfo struct {
	Company  *string  `json:"company"`
	Position *string  `json:"position"`
	Skills   []string `json:"skills"`
	Location *string  `json:"location"`
	Salary   *string  `json:"salary"`
}

type InterviewAnalysis struct {
	MatchScore  int      `json:"matchScore"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	Suggestions []string `json:"suggestions"`
	Summary     string   `json:"summary"`
}

func EmptyJDInfo() JDInfo {
	return JDInfo{Skills: []string{}}
}

func FailedInterviewAnalysis() InterviewAnalysis {
	return InterviewAnalysis{
		MatchScore:  0,
		Strengths:   []string{},
		Weaknesses:  []string{},
		Suggestions: []string{},
		Summary:     "Analysis failed",
	}
}
