package services

import "fmt"

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildSkillExtractionPrompt asks for a bare JSON array of skill names.
func (pb *PromptBuilder) BuildSkillExtractionPrompt(text, source string) string {
	return fmt.Sprintf(`Extract technical skills and key competencies from the following %s.
Return ONLY a JSON array of skill names, nothing else.

Text:
%s

Return format: ["skill1", "skill2", "skill3"]
`, source, text)
}

// BuildJDExtractionPrompt asks for the structured fields of a job description.
func (pb *PromptBuilder) BuildJDExtractionPrompt(jdText string) string {
	return fmt.Sprintf(`Extract key information from this job description and return as JSON.

Job Description:
%s

Return format:
{
  "company": "Company name",
  "position": "Job title",
  "skills": ["skill1", "skill2", "skill3"],
  "location": "Location if mentioned",
  "salary": "Salary range if mentioned"
}

If any field is not found, use null. Return ONLY the JSON object, nothing else.
`, jdText)
}

func (pb *PromptBuilder) BuildInterviewAnalysisPrompt(transcript, jd, resume string) string {
	return fmt.Sprintf(`Analyze this interview performance based on the job requirements and candidate's resume.

【Job Requirements】
%s

【Candidate Resume】
%s

【Interview Transcript】
%s

Provide analysis in JSON format:
{
  "matchScore": 85,
  "strengths": ["strength1", "strength2"],
  "weaknesses": ["weakness1", "weakness2"],
  "suggestions": ["suggestion1", "suggestion2"],
  "summary": "Overall assessment summary"
}

matchScore is an integer from 0 to 100. Return ONLY the JSON object, nothing else.
`, jd, resume, transcript)
}

func (pb *PromptBuilder) BuildMockQuestionsPrompt(jd, resume string, numQuestions int) string {
	return fmt.Sprintf(`Generate %d targeted interview questions based on the job requirements and candidate's background.

【Job Requirements】
%s

【Candidate Resume】
%s

Return ONLY a JSON array of questions: ["question1", "question2", ...]
`, numQuestions, jd, resume)
}
