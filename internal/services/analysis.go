package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/interview-helper/api/internal/models"
)

const DefaultNumQuestions = 8

// AnalysisService turns free text into structured insights through the LLM.
//
// Every operation is best-effort: an upstream failure or a reply that is not
// the expected JSON shape is logged and replaced by a typed default. Only a
// missing credential (ErrConfiguration) is returned to the caller.
type AnalysisService interface {
	ExtractSkills(ctx context.Context, text, source string) ([]string, error)
	ExtractJDInfo(ctx context.Context, jdText string) (models.JDInfo, error)
	AnalyzeInterview(ctx context.Context, transcript, jd, resume string) (models.InterviewAnalysis, error)
	GenerateMockQuestions(ctx context.Context, jd, resume string, numQuestions int) ([]string, error)
}

type analysisService struct {
	llm           LLMClient
	promptBuilder *PromptBuilder
	observer      Observer
}

func NewAnalysisService(llm LLMClient, observer Observer) AnalysisService {
	if observer == nil {
		observer = NopObserver{}
	}
	return &analysisService{
		llm:           llm,
		promptBuilder: NewPromptBuilder(),
		observer:      observer,
	}
}

type interviewReply struct {
	MatchScore  float64  `json:"matchScore"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	Suggestions []string `json:"suggestions"`
	Summary     *string  `json:"summary"`
}

func (a *analysisService) ExtractSkills(ctx context.Context, text, source string) ([]string, error) {
	if source == "" {
		source = "resume"
	}
	reply, err := a.llm.Complete(ctx, a.promptBuilder.BuildSkillExtractionPrompt(text, source), "")
	if err != nil {
		if err := a.absorb("extract_skills", err); err != nil {
			return nil, fmt.Errorf("extract skills: %w", err)
		}
		return []string{}, nil
	}

	skills, ok := decodeReply[[]string](reply, stringListSchema, "extract_skills")
	if !ok {
		a.observer.ObserveAnalysisFallback("extract_skills")
		return []string{}, nil
	}
	return orEmpty(skills), nil
}

func (a *analysisService) ExtractJDInfo(ctx context.Context, jdText string) (models.JDInfo, error) {
	reply, err := a.llm.Complete(ctx, a.promptBuilder.BuildJDExtractionPrompt(jdText), "")
	if err != nil {
		if err := a.absorb("extract_jd_info", err); err != nil {
			return models.JDInfo{}, fmt.Errorf("extract jd info: %w", err)
		}
		return models.EmptyJDInfo(), nil
	}

	info, ok := decodeReply[models.JDInfo](reply, jdInfoSchema, "extract_jd_info")
	if !ok {
		a.observer.ObserveAnalysisFallback("extract_jd_info")
		return models.EmptyJDInfo(), nil
	}
	info.Skills = orEmpty(info.Skills)
	return info, nil
}

func (a *analysisService) AnalyzeInterview(ctx context.Context, transcript, jd, resume string) (models.InterviewAnalysis, error) {
	prompt := a.promptBuilder.BuildInterviewAnalysisPrompt(transcript, jd, resume)
	reply, err := a.llm.Complete(ctx, prompt, "")
	if err != nil {
		if err := a.absorb("analyze_interview", err); err != nil {
			return models.InterviewAnalysis{}, fmt.Errorf("analyze interview: %w", err)
		}
		return models.FailedInterviewAnalysis(), nil
	}

	parsed, ok := decodeReply[interviewReply](reply, interviewAnalysisSchema, "analyze_interview")
	if !ok {
		a.observer.ObserveAnalysisFallback("analyze_interview")
		return models.FailedInterviewAnalysis(), nil
	}

	analysis := models.InterviewAnalysis{
		MatchScore:  clampScore(parsed.MatchScore),
		Strengths:   orEmpty(parsed.Strengths),
		Weaknesses:  orEmpty(parsed.Weaknesses),
		Suggestions: orEmpty(parsed.Suggestions),
	}
	if parsed.Summary != nil {
		analysis.Summary = *parsed.Summary
	}
	return analysis, nil
}

// GenerateMockQuestions asks for numQuestions questions as given; the reply
// length is not checked against it.
func (a *analysisService) GenerateMockQuestions(ctx context.Context, jd, resume string, numQuestions int) ([]string, error) {
	reply, err := a.llm.Complete(ctx, a.promptBuilder.BuildMockQuestionsPrompt(jd, resume, numQuestions), "")
	if err != nil {
		if err := a.absorb("generate_mock_questions", err); err != nil {
			return nil, fmt.Errorf("generate mock questions: %w", err)
		}
		return []string{}, nil
	}

	questions, ok := decodeReply[[]string](reply, stringListSchema, "generate_mock_questions")
	if !ok {
		a.observer.ObserveAnalysisFallback("generate_mock_questions")
		return []string{}, nil
	}
	return orEmpty(questions), nil
}

// absorb decides whether a client error reaches the caller. A missing
// credential does; anything else is logged and counted as a fallback.
func (a *analysisService) absorb(operation string, err error) error {
	if errors.Is(err, ErrConfiguration) {
		return err
	}
	log.Printf("⚠️ %s: LLM call failed, using default: %v", operation, err)
	a.observer.ObserveAnalysisFallback(operation)
	return nil
}

// decodeReply parses reply strictly as JSON of the given shape. ok is false
// when the caller should fall back to its default.
func decodeReply[T any](reply string, schema *jsonschema.Schema, operation string) (T, bool) {
	var out T
	jsonStr := stripCodeFence(reply)

	var doc any
	if err := json.Unmarshal([]byte(jsonStr), &doc); err != nil {
		log.Printf("⚠️ %s: reply is not valid JSON: %v", operation, err)
		return out, false
	}
	if err := schema.Validate(doc); err != nil {
		log.Printf("⚠️ %s: reply has unexpected shape: %v", operation, err)
		return out, false
	}
	if err := json.Unmarshal([]byte(jsonStr), &out); err != nil {
		log.Printf("⚠️ %s: failed to decode reply: %v", operation, err)
		return out, false
	}
	return out, true
}

// stripCodeFence removes one markdown fence wrapping the whole reply.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") || len(text) < 6 {
		return text
	}

	inner := text[3 : len(text)-3]
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		// drop the language tag line, e.g. ```json
		if tag := strings.TrimSpace(inner[:nl]); !strings.ContainsAny(tag, "[{") {
			inner = inner[nl+1:]
		}
	} else {
		inner = strings.TrimPrefix(strings.TrimSpace(inner), "json")
	}
	return strings.TrimSpace(inner)
}

// clampScore clamps before converting so huge values cannot overflow int.
func clampScore(score float64) int {
	switch {
	case math.IsNaN(score), score <= 0:
		return 0
	case score >= 100:
		return 100
	default:
		return int(math.Round(score))
	}
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
