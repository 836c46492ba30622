package answer

import (
	"regexp"
	"strings"
)

// GuardResult is the outcome of scanning text on its way to or from the
// completion service.
type GuardResult struct {
	// Blocked means the text must not be used.
	Blocked bool
	// Score is a heuristic risk in [0,1].
	Score   float64
	Reasons []string
	// Sanitized is the text with known injection markers removed.
	Sanitized string
}

type guardPattern struct {
	re     *regexp.Regexp
	reason string
	weight float64
}

const (
	blockThreshold = 0.7
	warnThreshold  = 0.3
)

var questionPatterns = []guardPattern{
	{regexp.MustCompile(`(?i)(ignore|disregard|forget)\s+(all\s+)?(previous|prior|above|earlier|your)\s+(instructions?|rules?|prompts?|guidelines?)`), "injection:ignore_instructions", 0.9},
	{regexp.MustCompile(`(?i)you\s+are\s+now\s+(a|an|my)\s+`), "injection:role_reassignment", 0.7},
	{regexp.MustCompile(`(?i)new\s+instructions?\s*:|system\s*prompt\s*:|<<\s*sys(tem)?\s*>>`), "injection:new_instructions", 0.9},
	{regexp.MustCompile(`(?i)override\s+(your\s+)?(system|instructions?|rules?|safety)`), "injection:override", 0.8},
	{regexp.MustCompile(`(?i)jailbreak|DAN\s*mode|developer\s*mode|unrestricted\s*mode`), "injection:jailbreak_keyword", 0.9},
	{regexp.MustCompile(`(?i)(reveal|show|print|repeat|tell\s+me)\s+(your\s+)?(system\s+prompt|instructions|initial\s+prompt|hidden\s+prompt)`), "exfiltration:system_prompt", 0.8},
	{regexp.MustCompile(`(?i)\b(api|secret|aws|database|db)\s*(key|token|secret|password|credential)s?\b`), "exfiltration:credentials", 0.8},
	{regexp.MustCompile(`(?i)repeat\s+(everything|all|the\s+text)\s+(above|before|from\s+the\s+start)`), "exfiltration:repeat_above", 0.7},
	{regexp.MustCompile(`(?i)\[/?INST\]|\[/?SYS\]|<\|im_start\|>|<\|im_end\|>|<\|system\|>|<\|user\|>|<\|assistant\|>`), "context:special_tokens", 0.9},
	{regexp.MustCompile(`(?i)###\s*(system|instruction|human|assistant|user)\s*:`), "context:role_markers", 0.5},
	{regexp.MustCompile(`<\s*(script|iframe|object|embed|svg|form)\b`), "obfuscation:html", 0.6},
	{regexp.MustCompile(`(?i)base64\s*(encode|decode|:)`), "obfuscation:encoding", 0.4},
}

var (
	specialTokenRe = regexp.MustCompile(`(?i)\[/?INST\]|\[/?SYS\]|<\|im_start\|>|<\|im_end\|>|<\|system\|>|<\|user\|>|<\|assistant\|>`)
	roleMarkerRe   = regexp.MustCompile(`(?i)###\s*(system|instruction|human|assistant|user)\s*:`)
	htmlTagRe      = regexp.MustCompile(`<\s*(script|iframe|object|embed|svg|form)\b[^>]*>`)
)

// ScanQuestion scores a visitor question for prompt injection. Questions at
// or above the block threshold never reach the completion service.
func ScanQuestion(question string) GuardResult {
	if strings.TrimSpace(question) == "" {
		return GuardResult{Sanitized: question}
	}

	var reasons []string
	maxWeight := 0.0
	for _, p := range questionPatterns {
		if p.re.MatchString(question) {
			reasons = append(reasons, p.reason)
			if p.weight > maxWeight {
				maxWeight = p.weight
			}
		}
	}

	// Each extra signal adds 0.1.
	score := maxWeight
	if len(reasons) > 1 {
		score = min(maxWeight+float64(len(reasons)-1)*0.1, 1.0)
	}

	res := GuardResult{Score: score, Reasons: reasons, Sanitized: question}
	switch {
	case score >= blockThreshold:
		res.Blocked = true
	case score >= warnThreshold:
		res.Sanitized = sanitizeQuestion(question)
	}
	return res
}

func sanitizeQuestion(question string) string {
	cleaned := specialTokenRe.ReplaceAllString(question, "")
	cleaned = roleMarkerRe.ReplaceAllString(cleaned, "")
	cleaned = htmlTagRe.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

var replyPatterns = []guardPattern{
	{regexp.MustCompile(`(?i)my (system\s+)?prompt\s+(is|says|tells|instructs)`), "leak:system_prompt", 1},
	{regexp.MustCompile(`(?i)(here are|these are)\s+(my )?(system )?(instructions|rules|prompts)`), "leak:rules_listing", 1},
	{regexp.MustCompile(`(?i)(api[_\s]?key|secret[_\s]?key|access[_\s]?token|bearer\s+token)\s*[:=]\s*\S+`), "leak:credential", 1},
	{regexp.MustCompile(`AKIA[A-Z0-9]{16}`), "leak:aws_key", 1},
	{regexp.MustCompile(`(?i)\bsk-[a-zA-Z0-9_-]{20,}`), "leak:api_key", 1},
	{regexp.MustCompile(`(?i)(postgres|postgresql|redis)://\S+`), "leak:database_url", 1},
}

// ScanReply checks a completion for leaked prompt text or secrets. A
// blocked reply is replaced by the FAQ answer.
func ScanReply(reply string) GuardResult {
	res := GuardResult{Sanitized: reply}
	for _, p := range replyPatterns {
		if p.re.MatchString(reply) {
			res.Reasons = append(res.Reasons, p.reason)
			res.Score = p.weight
		}
	}
	res.Blocked = len(res.Reasons) > 0
	if res.Blocked {
		res.Sanitized = ""
	}
	return res
}
