package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	apperrors "hotelbot/internal/errors"
	"hotelbot/internal/model"
	"hotelbot/internal/utils"

	"github.com/invopop/jsonschema"
	"go.uber.org/zap"
)

// SlotExtractor turns a chat message into raw, untrusted search slots
type SlotExtractor interface {
	Extract(ctx context.Context, text string) (*model.RawSlots, error)
}

const extractionInstruction = `You extract hotel search parameters from user text.
Return STRICTLY valid minified JSON matching the provided JSON Schema.
- If dates are relative (e.g., "next weekend"), put them in check_in_text/check_out_text or use nights.
- Include a confidence score 0..1.
- Do not add keys not in the schema. Do not include explanations or markdown.
`

var (
	slotSchemaOnce sync.Once
	slotSchemaText string
)

// SlotSchema returns the minified JSON Schema reflected from model.RawSlots
func SlotSchema() string {
	slotSchemaOnce.Do(func() {
		reflector := jsonschema.Reflector{
			AllowAdditionalProperties: false,
			DoNotReference:            true,
		}
		schema := reflector.Reflect(&model.RawSlots{})
		schema.Version = ""
		schema.ID = ""
		data, err := json.Marshal(schema)
		if err != nil {
			panic(fmt.Sprintf("slot schema: %v", err))
		}
		slotSchemaText = string(data)
	})
	return slotSchemaText
}

// BuildExtractionPrompt embeds the instruction, the slot schema and the user text
func BuildExtractionPrompt(text string) string {
	return fmt.Sprintf("%s\nJSON Schema:\n%s\n\nUser: %s", extractionInstruction, SlotSchema(), text)
}

// IntentParser extracts slots with a language model
type IntentParser struct {
	completer Completer
	lenient   bool
	log       *zap.SugaredLogger
}

// NewIntentParser creates a new intent parser. With lenient set, JSON wrapped in
// markdown or prose is recovered instead of rejected.
func NewIntentParser(completer Completer, lenient bool, log *zap.SugaredLogger) *IntentParser {
	return &IntentParser{
		completer: completer,
		lenient:   lenient,
		log:       log,
	}
}

// Extract makes one completion round trip and decodes the reply into RawSlots.
// Every failure is an NLU error.
func (p *IntentParser) Extract(ctx context.Context, text string) (*model.RawSlots, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NLU(fmt.Errorf("empty message"))
	}

	reply, err := p.completer.Complete(ctx, BuildExtractionPrompt(text))
	if err != nil {
		return nil, apperrors.NLU(err)
	}
	reply = strings.TrimSpace(reply)

	var slots model.RawSlots
	if p.lenient {
		err = utils.DecodeModelJSON(reply, &slots)
	} else {
		err = json.Unmarshal([]byte(reply), &slots)
	}
	if err != nil {
		p.log.Warnw("Language model reply is not valid slot JSON", "reply", truncate(reply, 200), "error", err)
		return nil, apperrors.NLU(fmt.Errorf("invalid JSON from language model: %w", err))
	}

	if slots.Intent.Valid && strings.TrimSpace(slots.Intent.Value) != model.IntentFindCheapestHotel {
		return nil, apperrors.NLU(fmt.Errorf("unsupported intent %q", slots.Intent.Value))
	}

	p.log.Debugw("Slots extracted", "slots", slots)
	return &slots, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
