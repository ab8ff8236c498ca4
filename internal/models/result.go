package models

type ResumeUploadResponse struct {
	Success bool   `json:"success"`
	FileID  string `json:"fileId"`
	Text    string `json:"text"`
}

type TranscribeResponse struct {
	Success    bool   `json:"success"`
	FileID     string `json:"fileId"`
	Transcript string `json:"transcript"`
}

type TranscribeStatusResponse struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

type ExtractSkillsRequest struct {
	Text    string `json:"text"`
	Context string `json:"context"`
}

type ExtractSkillsResponse struct {
	Skills []string `json:"skills"`
}

type ExtractJDRequest struct {
	JDText string `json:"jd_text"`
}

type AnalyzeInterviewRequest struct {
	Transcript string `json:"transcript"`
	JD         string `json:"jd"`
	Resume     string `json:"resume"`
}

type MockQuestionsRequest struct {
	JD           string `json:"jd"`
	Resume       string `json:"resume"`
	NumQuestions *int   `json:"num_questions"`
}

type MockQuestionsResponse struct {
	Questions []string `json:"questions"`
}
