package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/justsurfingit/hirepath/internal/config"
	"github.com/justsurfingit/hirepath/internal/dtos"
	"github.com/justsurfingit/hirepath/internal/metrics"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

const (
	maxPromptHTML = 20000
	maxPromptCV   = 12000
)

type LLMService struct {
	Client llms.Model
}

// NewLLMService creates a Gemini client.
func NewLLMService(ctx context.Context, settings config.LLMSettings) (*LLMService, error) {
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(settings.APIKey),
		googleai.WithDefaultModel(settings.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &LLMService{Client: llm}, nil
}

const jobExtractionPrompt = `
You are an expert Job Data Extraction Agent. Your task is to analyze the provided raw HTML/Text from a job posting and extract structured data.

### INSTRUCTIONS:
1. **Analyze** the text to identify the core job details.
2. **Ignore** navigation menus, footers, "similar jobs" lists, and site advertisements.
3. **Extract** the following fields strictly.
4. **Format** the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "company_name": "Name of the company (e.g., Google, StartupInc)",
    "role_title": "Job title (e.g., Senior Backend Engineer)",
    "location": "Job location or 'Remote'",
    "description": "A clean summary of the job. Focus on Responsibilities and Requirements. Remove HTML tags.",
    "tech_stack": ["Array", "of", "technologies", "mentioned", "e.g., Go, React, AWS"],
    "salary_range": "The salary string if explicitly mentioned (e.g., '$100k - $150k'), otherwise null"
}

### CONSTRAINT:
If a piece of information is missing, set the value to null. Do not hallucinate or guess.

### RAW CONTENT:
%s
`

// ExtractJobDetails takes raw HTML and returns a structured object
func (s *LLMService) ExtractJobDetails(ctx context.Context, rawHTML string) (*dtos.ExtractedJob, error) {
	rawHTML = truncateUTF8(rawHTML, maxPromptHTML)

	start := time.Now()
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, fmt.Sprintf(jobExtractionPrompt, rawHTML))
	metrics.ObserveLLM("job_extraction", start, err)
	if err != nil {
		return nil, fmt.Errorf("job extraction: %w", err)
	}

	var job dtos.ExtractedJob
	if err := json.Unmarshal([]byte(CleanJSON(resp)), &job); err != nil {
		return nil, fmt.Errorf("job extraction returned invalid JSON: %w", err)
	}
	if job.TechStack == nil {
		job.TechStack = []string{}
	}
	return &job, nil
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// CoverLetterInput gathers what the model knows about the applicant.
type CoverLetterInput struct {
	FullName       string
	Headline       string
	Location       string
	Summary        string
	Skills         []string
	CVText         string
	Company        string
	JobTitle       string
	JobDescription string
	Tone           string
}

const coverLetterPrompt = `
You are a career coach writing a cover letter for a job application.

### CANDIDATE:
Name: %s
Headline: %s
Location: %s
Skills: %s
Summary: %s

### CV:
%s

### JOB:
Company: %s
Title: %s
Description:
%s

### INSTRUCTIONS:
1. Write in a %s tone, between 250 and 400 words.
2. Only mention experience that appears in the candidate profile or CV.
3. Return the letter body as plain text, without a subject line or markdown.
`

func (s *LLMService) GenerateCoverLetter(ctx context.Context, in CoverLetterInput) (string, error) {
	cv := truncateUTF8(in.CVText, maxPromptCV)
	tone := in.Tone
	if tone == "" {
		tone = "formal"
	}
	prompt := fmt.Sprintf(coverLetterPrompt,
		in.FullName, in.Headline, in.Location, strings.Join(in.Skills, ", "), in.Summary,
		orNone(cv), orNone(in.Company), orNone(in.JobTitle), in.JobDescription, tone)

	start := time.Now()
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, prompt)
	metrics.ObserveLLM("cover_letter", start, err)
	if err != nil {
		return "", fmt.Errorf("cover letter generation: %w", err)
	}
	letter := strings.TrimSpace(CleanJSON(resp))
	if letter == "" {
		return "", fmt.Errorf("cover letter generation: empty response")
	}
	return letter, nil
}

// CleanJSON strips the markdown fences models like to add around output.
func CleanJSON(input string) string {
	clean := strings.TrimSpace(input)
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}
