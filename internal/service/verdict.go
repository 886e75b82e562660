package service

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"interviewbot/internal/model"
)

type verdictKind int

const (
	verdictUnparsable verdictKind = iota
	verdictSufficient
	verdictInsufficient
)

// parsedVerdict is the tagged result of reading an evaluation reply
type parsedVerdict struct {
	kind     verdictKind
	score    *int
	value    *string
	feedback *string
}

type verdictPayload struct {
	Verdict  string      `json:"verdict"`
	Score    *float64    `json:"score"`
	Value    interface{} `json:"value"`
	Feedback *string     `json:"feedback"`
}

// parseVerdict reads either the JSON verdict object or the plain
// "SUFFICIENT" / "INSUFFICIENT: reason" form. Anything else is unparsable.
func parseVerdict(reply string) parsedVerdict {
	text := stripCodeFence(strings.TrimSpace(reply))
	if text == "" {
		return parsedVerdict{kind: verdictUnparsable}
	}

	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		var payload verdictPayload
		if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err == nil {
			return payload.toVerdict()
		}
	}
	return parsePlainVerdict(text)
}

func (p verdictPayload) toVerdict() parsedVerdict {
	var out parsedVerdict
	switch strings.ToUpper(strings.TrimSpace(p.Verdict)) {
	case "SUFFICIENT":
		out.kind = verdictSufficient
	case "INSUFFICIENT":
		out.kind = verdictInsufficient
	default:
		return parsedVerdict{kind: verdictUnparsable}
	}

	if p.Score != nil && !math.IsNaN(*p.Score) && !math.IsInf(*p.Score, 0) {
		clamped := math.Max(model.MinScore, math.Min(model.MaxScore, *p.Score))
		score := int(math.Round(clamped))
		out.score = &score
	}
	if v, ok := stringValue(p.Value); ok {
		out.value = &v
	}
	if p.Feedback != nil {
		if fb := strings.TrimSpace(*p.Feedback); fb != "" {
			out.feedback = &fb
		}
	}
	return out
}

func parsePlainVerdict(text string) parsedVerdict {
	line := strings.TrimSpace(strings.SplitN(text, "\n", 2)[0])
	upper := strings.ToUpper(line)

	switch {
	case strings.HasPrefix(upper, "INSUFFICIENT"):
		out := parsedVerdict{kind: verdictInsufficient}
		if idx := strings.Index(line, ":"); idx >= 0 {
			if reason := strings.TrimSpace(line[idx+1:]); reason != "" {
				out.feedback = &reason
			}
		}
		return out
	case strings.HasPrefix(upper, "SUFFICIENT"):
		return parsedVerdict{kind: verdictSufficient}
	}
	return parsedVerdict{kind: verdictUnparsable}
}

func stringValue(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		return s, s != ""
	case bool:
		if val {
			return "yes", true
		}
		return "no", true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	}
	return "", false
}

func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.Index(text, "\n"); nl >= 0 {
		text = text[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}
