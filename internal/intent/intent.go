// Package intent turns a raw spoken utterance into a structured
// LocationIntent by calling an LLM provider constrained to a strict JSON
// contract. Both provider adapters share one normalization path; only the
// transport differs.
package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/assistive-ai/digitalcane/internal/models"
)

// ErrParse reports that the provider returned something other than the
// agreed JSON object, or an object missing mandatory keys.
var ErrParse = errors.New("intent response did not match contract")

// Resolver extracts a LocationIntent from an utterance. Implementations do
// not retry; transport errors are wrapped and surfaced to the caller.
type Resolver interface {
	Resolve(ctx context.Context, utterance string) (models.LocationIntent, error)
}

// systemInstruction is the fixed contract sent ahead of every utterance.
// Any response outside this shape is rejected.
const systemInstruction = `당신은 시각장애인 길안내 앱의 의도 분석기입니다.
사용자의 음성 문장에서 출발지와 목적지를 추출해 아래 JSON 객체 하나만 출력하세요.
{"originName": string, "destinationName": string, "transportMode": "TRANSIT", "clarificationNeeded": boolean, "clarificationQuestion": string}
규칙:
- 출발지가 언급되지 않으면 originName은 "CURRENT_LOCATION"으로 설정합니다.
- 같은 이름의 장소가 여러 곳이거나 목적지를 알아들을 수 없으면 장소를 추측하지 말고
  clarificationNeeded를 true로 설정하고 clarificationQuestion에 짧은 되묻기 질문을 넣습니다.
- JSON 외의 설명, 마크다운, 코드 블록을 출력하지 마세요.`

// rawIntent mirrors the wire contract with pointers so missing keys can be
// told apart from zero values.
type rawIntent struct {
	OriginName            *string `json:"originName"`
	DestinationName       *string `json:"destinationName"`
	TransportMode         *string `json:"transportMode"`
	ClarificationNeeded   bool    `json:"clarificationNeeded"`
	ClarificationQuestion string  `json:"clarificationQuestion"`
}

// parseIntent validates and normalizes raw model output. It is the single
// decode path for every provider adapter.
func parseIntent(raw string) (models.LocationIntent, error) {
	body := extractJSONObject(raw)
	if body == "" {
		return models.LocationIntent{}, fmt.Errorf("%w: no JSON object in %q", ErrParse, truncate(raw, 80))
	}

	var ri rawIntent
	if err := json.Unmarshal([]byte(body), &ri); err != nil {
		return models.LocationIntent{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if ri.DestinationName == nil || ri.TransportMode == nil {
		return models.LocationIntent{}, fmt.Errorf("%w: missing destinationName or transportMode", ErrParse)
	}

	intent := models.LocationIntent{
		DestinationName:       strings.TrimSpace(*ri.DestinationName),
		TransportMode:         models.TransportMode(strings.ToUpper(strings.TrimSpace(*ri.TransportMode))),
		ClarificationNeeded:   ri.ClarificationNeeded,
		ClarificationQuestion: strings.TrimSpace(ri.ClarificationQuestion),
	}
	if ri.OriginName != nil {
		intent.OriginName = strings.TrimSpace(*ri.OriginName)
	}
	if intent.TransportMode == "" {
		intent.TransportMode = models.ModeTransit
	}

	// A clarification without a question cannot be spoken; treat it as a
	// contract violation rather than guessing one.
	if intent.ClarificationNeeded && intent.ClarificationQuestion == "" {
		return models.LocationIntent{}, fmt.Errorf("%w: clarificationNeeded without clarificationQuestion", ErrParse)
	}

	return intent, nil
}

// extractJSONObject strips markdown fences and surrounding prose, returning
// the outermost {...} span or "".
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
