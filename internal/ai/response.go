package ai

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// ResultTypeStructured marks a parsed, normalized response.
const ResultTypeStructured = "structured"

// Result is returned by the structured operations. In text mode only
// Content and Type are set.
type Result struct {
	Type     string         `json:"type"`
	Content  string         `json:"content,omitempty"`
	Raw      any            `json:"raw,omitempty"`
	Sections map[string]any `json:"sections,omitempty"`
}

// UnrecognizedShapeError reports valid JSON that matches none of the
// canonical sections of the request type.
type UnrecognizedShapeError struct {
	Operation string
	Keys      []string
}

func (e *UnrecognizedShapeError) Error() string {
	return fmt.Sprintf("%s: unrecognized response shape (keys: %s)", e.Operation, strings.Join(e.Keys, ", "))
}

// section is a canonical key and the aliases it may appear under, in
// lookup order.
type section struct {
	key     string
	aliases []string
}

type schema struct {
	operation string
	textType  string
	sections  []section
}

var (
	resumeSchema = schema{
		operation: opResume,
		textType:  "text_analysis",
		sections: []section{
			{"overall_assessment", []string{"overall_assessment", "assessment", "overall", "overall_score", "score"}},
			{"strengths", []string{"strengths", "what_works"}},
			{"areas_for_improvement", []string{"areas_for_improvement", "improvements", "areas_of_improvement", "weaknesses"}},
			{"missing_elements", []string{"missing_elements", "missing", "missing_sections"}},
			{"formatting", []string{"formatting", "formatting_and_structure", "structure", "layout"}},
			{"ats_keywords", []string{"ats_keywords", "keywords_and_ats_optimization", "ats_optimization", "keywords", "ats"}},
			{"industry_recommendations", []string{"industry_recommendations", "industry_specific_recommendations", "recommendations"}},
			{"action_items", []string{"action_items", "next_steps", "actions"}},
		},
	}
	jobSchema = schema{
		operation: opJob,
		textType:  "text_analysis",
		sections: []section{
			{"role_summary", []string{"role_summary", "summary", "overview"}},
			{"key_responsibilities", []string{"key_responsibilities", "responsibilities"}},
			{"required_skills", []string{"required_skills", "skills", "must_have_skills"}},
			{"preferred_qualifications", []string{"preferred_qualifications", "nice_to_have", "preferred_skills"}},
			{"experience_level", []string{"experience_level", "seniority", "level"}},
			{"company_culture", []string{"company_culture", "company_culture_indicators", "culture"}},
			{"salary_estimate", []string{"salary_estimate", "salary_range_estimate", "salary_range", "salary"}},
			{"application_tips", []string{"application_tips", "tips"}},
			{"red_flags", []string{"red_flags", "concerns"}},
			{"match_factors", []string{"match_factors", "match_score_factors", "emphasize"}},
		},
	}
	careerSchema = schema{
		operation: opCareer,
		textType:  "text_insights",
		sections: []section{
			{"career_trajectory", []string{"career_trajectory", "career_trajectory_analysis", "trajectory"}},
			{"market_position", []string{"market_position", "competitiveness"}},
			{"skill_gaps", []string{"skill_gaps", "skill_gap_analysis", "skills_to_develop"}},
			{"industry_trends", []string{"industry_trends", "trends"}},
			{"networking", []string{"networking", "networking_recommendations"}},
			{"personal_branding", []string{"personal_branding", "personal_branding_suggestions", "branding"}},
			{"short_term_goals", []string{"short_term_goals", "short_term"}},
			{"long_term_strategy", []string{"long_term_strategy", "long_term_goals", "long_term"}},
			{"application_strategy", []string{"application_strategy"}},
			{"professional_development", []string{"professional_development", "development"}},
		},
	}
	interviewSchema = schema{
		operation: opInterview,
		textType:  "text_questions",
		sections: []section{
			{"technical", []string{"technical", "technical_questions"}},
			{"behavioral", []string{"behavioral", "behavioral_questions", "behavioural"}},
			{"company_fit", []string{"company_fit", "company_role_fit", "role_fit", "culture_fit", "fit"}},
			{"situational", []string{"situational", "situational_questions"}},
			{"experience", []string{"experience", "experience_questions", "questions_about_experience"}},
		},
	}
)

// interpret turns raw completion text into a Result. Text that is not JSON
// yields the text-mode envelope; JSON with no known section yields an
// *UnrecognizedShapeError.
func interpret(s schema, text string) (*Result, error) {
	body := stripFences(text)

	var raw any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return &Result{Type: s.textType, Content: text}, nil
	}

	var sections map[string]any
	switch v := raw.(type) {
	case map[string]any:
		sections = s.normalize(v)
		if len(sections) == 0 {
			if inner, ok := soleObject(v); ok {
				sections = s.normalize(inner)
			}
		}
	case []any:
		sections = s.normalize(categoriesToObject(v))
	default:
		return &Result{Type: s.textType, Content: text}, nil
	}

	if len(sections) == 0 {
		return nil, &UnrecognizedShapeError{Operation: s.operation, Keys: topLevelKeys(raw)}
	}
	return &Result{Type: ResultTypeStructured, Raw: raw, Sections: sections}, nil
}

func (s schema) normalize(obj map[string]any) map[string]any {
	index := make(map[string]string, len(obj))
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	// first raw key wins when two normalize to the same form
	sort.Strings(keys)
	for _, k := range keys {
		norm := normalizeKey(k)
		if _, exists := index[norm]; !exists {
			index[norm] = k
		}
	}

	out := make(map[string]any)
	for _, sec := range s.sections {
		for _, alias := range sec.aliases {
			if rawKey, ok := index[normalizeKey(alias)]; ok {
				out[sec.key] = obj[rawKey]
				break
			}
		}
	}
	return out
}

// normalizeKey folds case and drops separators so "Overall Assessment",
// "overall_assessment" and "overallAssessment" compare equal.
func normalizeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func soleObject(obj map[string]any) (map[string]any, bool) {
	if len(obj) != 1 {
		return nil, false
	}
	for _, v := range obj {
		inner, ok := v.(map[string]any)
		return inner, ok
	}
	return nil, false
}

// categoriesToObject maps [{"category": "Technical", "questions": [...]}]
// onto {"Technical": [...]}.
func categoriesToObject(items []any) map[string]any {
	out := make(map[string]any)
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, _ := obj["category"].(string)
		if name == "" {
			continue
		}
		if questions, ok := obj["questions"]; ok {
			out[name] = questions
		} else {
			out[name] = obj
		}
	}
	return out
}

func topLevelKeys(raw any) []string {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	if nl := strings.IndexByte(trimmed, '\n'); nl >= 0 {
		trimmed = trimmed[nl+1:]
	} else {
		trimmed = strings.TrimPrefix(trimmed, "```")
	}
	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}
