package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"code.sajari.com/docconv"
	"github.com/justsurfingit/applicant-intake/internal/logger"
	"github.com/justsurfingit/applicant-intake/internal/submission"
)

const (
	defaultMaxResumeBytes = 10 << 20
	maxPromptResumeChars  = 15000
)

// ScreeningService scores a resume against a job with an LLM.
type ScreeningService struct {
	llm            LLM
	client         *http.Client
	maxResumeBytes int64
	convert        func(r io.Reader, mimeType string) (string, error)
}

func NewScreeningService(llm LLM) *ScreeningService {
	return &ScreeningService{
		llm:            llm,
		client:         &http.Client{Timeout: 30 * time.Second},
		maxResumeBytes: defaultMaxResumeBytes,
		convert:        docconvText,
	}
}

func docconvText(r io.Reader, mimeType string) (string, error) {
	res, err := docconv.Convert(r, mimeType, false)
	if err != nil {
		return "", fmt.Errorf("failed to parse document: %w", err)
	}
	return res.Body, nil
}

func (s *ScreeningService) Screen(ctx context.Context, req submission.ScreenRequest) (*submission.ScreenResult, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("no LLM provider configured")
	}

	text := strings.TrimSpace(req.ResumeText)
	if text == "" && req.ResumeURL != "" {
		var err error
		text, err = s.fetchResumeText(ctx, req.ResumeURL)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("no text could be extracted from the resume")
		}
	}

	resp, err := s.llm.Generate(ctx, buildScreeningPrompt(req, text))
	if err != nil {
		return nil, fmt.Errorf("failed to get LLM response: %w", err)
	}

	result, err := parseScreening(resp)
	if err != nil {
		return nil, err
	}
	logger.Debug(ctx, "resume screened", "score", result.Score)
	return result, nil
}

func (s *ScreeningService) fetchResumeText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch resume: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch resume: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxResumeBytes+1))
	if err != nil {
		return "", fmt.Errorf("read resume: %w", err)
	}
	if int64(len(body)) > s.maxResumeBytes {
		return "", fmt.Errorf("resume exceeds %d bytes", s.maxResumeBytes)
	}

	mimeType := resumeMimeType(resp.Header.Get("Content-Type"), url)
	if strings.HasPrefix(mimeType, "text/plain") {
		return string(body), nil
	}
	return s.convert(bytes.NewReader(body), mimeType)
}

// resumeMimeType prefers a specific Content-Type and falls back to the extension.
func resumeMimeType(header, url string) string {
	if header != "" {
		if mt, _, err := mime.ParseMediaType(header); err == nil && mt != "application/octet-stream" {
			return mt
		}
	}
	switch strings.ToLower(path.Ext(url)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".doc":
		return "application/msword"
	case ".rtf":
		return "application/rtf"
	case ".odt":
		return "application/vnd.oasis.opendocument.text"
	case ".txt":
		return "text/plain"
	}
	return "application/pdf"
}

func buildScreeningPrompt(req submission.ScreenRequest, resumeText string) string {
	var sb strings.Builder

	sb.WriteString("You are an expert recruiter screening a job application. Score how well the candidate fits the role.\n\n")

	sb.WriteString("## JOB\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", req.JobTitle))
	sb.WriteString(fmt.Sprintf("Description: %s\n\n", req.JobDescription))

	sb.WriteString("## RESUME\n")
	if resumeText == "" {
		sb.WriteString("No resume text is available. Score from the job description alone and say so in the summary.\n\n")
	} else {
		if len(resumeText) > maxPromptResumeChars {
			resumeText = resumeText[:maxPromptResumeChars]
		}
		sb.WriteString(resumeText)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Provide your evaluation in the following JSON format:\n")
	sb.WriteString("{\n")
	sb.WriteString(`  "score": <0-100>,` + "\n")
	sb.WriteString(`  "summary": "<two or three sentences on strengths and gaps>"` + "\n")
	sb.WriteString("}\n\n")
	sb.WriteString("Return ONLY the JSON object, no additional text.\n")

	return sb.String()
}

// parseScreening reads the verdict. A reply without a score is returned with
// a nil Score so the caller treats it as a failed screening.
func parseScreening(resp string) (*submission.ScreenResult, error) {
	obj, err := extractJSONObject(resp)
	if err != nil {
		return nil, err
	}

	var result submission.ScreenResult
	if err := json.Unmarshal([]byte(obj), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	if result.Score != nil && (*result.Score < 0 || *result.Score > 100) {
		return nil, fmt.Errorf("score %v out of range", *result.Score)
	}
	return &result, nil
}
