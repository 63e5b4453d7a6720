package advisor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrReplyMalformed means no JSON object could be parsed out of the model's reply.
	ErrReplyMalformed = errors.New("ai response malformed")
	// ErrReplyIncomplete means the reply parsed but lacks a field the response requires.
	ErrReplyIncomplete = errors.New("ai response incomplete")
)

// ReplyError is returned by the reply normalizers. Kind is ErrReplyMalformed or ErrReplyIncomplete.
type ReplyError struct {
	Kind  error
	Field string
	Raw   string
	Err   error
}

func (e *ReplyError) Error() string {
	switch {
	case e.Field != "" && e.Err != nil:
		return fmt.Sprintf("%v: field %q: %v", e.Kind, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%v: missing field %q", e.Kind, e.Field)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

func (e *ReplyError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// AdvicePayload is the model-authored part of an advice response after normalization.
type AdvicePayload struct {
	ResponseNP                 string                 `json:"response_np"`
	ResponseEN                 string                 `json:"response_en"`
	MonthsNeeded               int64                  `json:"months_needed"`
	TargetAmountNPR            int64                  `json:"target_amount_npr"`
	RealisticMonthlySavingsNPR int64                  `json:"realistic_monthly_savings_npr"`
	ProgressPercent            int64                  `json:"progress_percent"`
	Tips                       []string               `json:"tips"`
	Alternatives               []Alternative          `json:"alternatives"`
	Simulation                 []InvestmentSimulation `json:"simulation,omitempty"`
}

// FeedbackPayload is the model-authored part of a feedback response after normalization.
type FeedbackPayload struct {
	Rights      []RightWrongItem `json:"rights"`
	Wrongs      []RightWrongItem `json:"wrongs"`
	Suggestions []string         `json:"suggestions"`
}

var (
	adviceIntegerFields      = []string{"progress_percent", "months_needed", "target_amount_npr", "realistic_monthly_savings_npr"}
	adviceRequiredFields     = []string{"response_np", "response_en", "months_needed", "target_amount_npr", "realistic_monthly_savings_npr", "progress_percent", "tips", "alternatives"}
	alternativeIntegerFields = []string{"price_npr", "months_needed"}
	alternativeRequired      = []string{"name", "price_npr", "months_needed"}
	simulationRequired       = []string{"month", "total_value", "fd_value", "shares_value", "mutual_funds_value", "gold_value"}
	feedbackItemRequired     = []string{"title", "amount", "description"}
)

// ExtractJSON isolates the JSON object inside a model reply: the interior of a ```json fence,
// else of any ``` fence, else the whole reply; then the span from the first '{' to the last '}'.
func ExtractJSON(reply string) string {
	content := reply
	if start := strings.Index(content, "```json"); start >= 0 {
		content = fenceInterior(content[start+len("```json"):])
	} else if start := strings.Index(content, "```"); start >= 0 {
		content = fenceInterior(content[start+len("```"):])
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}

	return content
}

// fenceInterior returns text up to the closing fence; an unterminated fence runs to the end.
func fenceInterior(text string) string {
	if end := strings.Index(text, "```"); end >= 0 {
		text = text[:end]
	}
	return strings.TrimSpace(text)
}

// DecodeReplyObject extracts and parses the JSON object in reply. Numbers are kept as json.Number.
func DecodeReplyObject(reply string) (map[string]any, error) {
	decoder := json.NewDecoder(strings.NewReader(ExtractJSON(reply)))
	decoder.UseNumber()

	var object map[string]any
	if err := decoder.Decode(&object); err != nil {
		return nil, &ReplyError{Kind: ErrReplyMalformed, Raw: reply, Err: err}
	}
	if object == nil {
		return nil, &ReplyError{Kind: ErrReplyMalformed, Raw: reply, Err: errors.New("reply is not a JSON object")}
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, &ReplyError{Kind: ErrReplyMalformed, Raw: reply, Err: errors.New("unexpected data after JSON object")}
	}

	return object, nil
}

// NormalizeAdviceReply turns a raw model reply into a typed advice payload.
func NormalizeAdviceReply(reply string) (AdvicePayload, error) {
	object, err := DecodeReplyObject(reply)
	if err != nil {
		return AdvicePayload{}, err
	}

	if err := coerceIntegers(object, adviceIntegerFields, ""); err != nil {
		return AdvicePayload{}, withRaw(err, reply)
	}
	if err := requireFields(object, adviceRequiredFields, ""); err != nil {
		return AdvicePayload{}, withRaw(err, reply)
	}

	if err := eachObject(object, "alternatives", func(entry map[string]any, path string) error {
		if err := coerceIntegers(entry, alternativeIntegerFields, path); err != nil {
			return err
		}
		return requireFields(entry, alternativeRequired, path)
	}); err != nil {
		return AdvicePayload{}, withRaw(err, reply)
	}

	if value, ok := object["simulation"]; ok && value == nil {
		delete(object, "simulation")
	}
	if err := eachObject(object, "simulation", func(entry map[string]any, path string) error {
		if err := coerceIntegers(entry, []string{"month"}, path); err != nil {
			return err
		}
		return requireFields(entry, simulationRequired, path)
	}); err != nil {
		return AdvicePayload{}, withRaw(err, reply)
	}

	var payload AdvicePayload
	if err := remarshal(object, &payload); err != nil {
		return AdvicePayload{}, withRaw(err, reply)
	}

	return payload, nil
}

// NormalizeFeedbackReply turns a raw model reply into a typed feedback payload.
// Missing lists are treated as empty.
func NormalizeFeedbackReply(reply string) (FeedbackPayload, error) {
	object, err := DecodeReplyObject(reply)
	if err != nil {
		return FeedbackPayload{}, err
	}

	for _, list := range []string{"rights", "wrongs"} {
		if err := eachObject(object, list, func(entry map[string]any, path string) error {
			if err := requireFields(entry, feedbackItemRequired, path); err != nil {
				return err
			}
			amount, err := toFloat(entry["amount"])
			if err != nil {
				return &ReplyError{Kind: ErrReplyIncomplete, Field: path + "amount", Err: err}
			}
			entry["amount"] = amount
			return nil
		}); err != nil {
			return FeedbackPayload{}, withRaw(err, reply)
		}
	}

	var payload FeedbackPayload
	if err := remarshal(object, &payload); err != nil {
		return FeedbackPayload{}, withRaw(err, reply)
	}

	if payload.Rights == nil {
		payload.Rights = []RightWrongItem{}
	}
	if payload.Wrongs == nil {
		payload.Wrongs = []RightWrongItem{}
	}
	if payload.Suggestions == nil {
		payload.Suggestions = []string{}
	}

	return payload, nil
}

func coerceIntegers(object map[string]any, fields []string, prefix string) error {
	for _, field := range fields {
		value, ok := object[field]
		if !ok || value == nil {
			continue
		}
		rounded, err := toInteger(value)
		if err != nil {
			return &ReplyError{Kind: ErrReplyIncomplete, Field: prefix + field, Err: err}
		}
		object[field] = rounded
	}
	return nil
}

func requireFields(object map[string]any, fields []string, prefix string) error {
	for _, field := range fields {
		if value, ok := object[field]; !ok || value == nil {
			return &ReplyError{Kind: ErrReplyIncomplete, Field: prefix + field}
		}
	}
	return nil
}

// eachObject calls fn for every entry of the list stored under key. An absent key is not an error.
func eachObject(object map[string]any, key string, fn func(entry map[string]any, path string) error) error {
	value, ok := object[key]
	if !ok || value == nil {
		return nil
	}

	list, ok := value.([]any)
	if !ok {
		return &ReplyError{Kind: ErrReplyIncomplete, Field: key, Err: fmt.Errorf("expected a list, got %T", value)}
	}

	for i, item := range list {
		path := fmt.Sprintf("%s[%d]", key, i)
		entry, ok := item.(map[string]any)
		if !ok {
			return &ReplyError{Kind: ErrReplyIncomplete, Field: path, Err: fmt.Errorf("expected an object, got %T", item)}
		}
		if err := fn(entry, path+"."); err != nil {
			return err
		}
	}
	return nil
}

// remarshal converts the loosely typed object into target; type mismatches are schema failures.
func remarshal(object map[string]any, target any) error {
	data, err := json.Marshal(object)
	if err != nil {
		return &ReplyError{Kind: ErrReplyMalformed, Err: err}
	}

	if err := json.Unmarshal(data, target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &ReplyError{Kind: ErrReplyIncomplete, Field: typeErr.Field, Err: err}
		}
		return &ReplyError{Kind: ErrReplyIncomplete, Err: err}
	}
	return nil
}

func withRaw(err error, raw string) error {
	var replyErr *ReplyError
	if errors.As(err, &replyErr) {
		replyErr.Raw = raw
	}
	return err
}

// toInteger accepts any numeric value and rounds half to even.
func toInteger(value any) (int64, error) {
	number, err := toFloat(value)
	if err != nil {
		return 0, err
	}
	rounded := math.RoundToEven(number)
	if rounded >= 1<<63 || rounded < -(1<<63) {
		return 0, fmt.Errorf("%v is out of the integer range", number)
	}
	return int64(rounded), nil
}

func toFloat(value any) (float64, error) {
	var number float64
	switch v := value.(type) {
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, err
		}
		number = parsed
	case float64:
		number = v
	case int64:
		number = float64(v)
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, fmt.Errorf("expected a number, got %q", v)
		}
		number = parsed
	default:
		return 0, fmt.Errorf("expected a number, got %T", value)
	}

	if math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, errors.New("expected a finite number")
	}
	return number, nil
}
