package app

import (
	"encoding/json"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"scisoc-quiz-service/internal/domain"
)

// maxOptionDepth bounds recursion through strings that contain JSON that
// contains strings, and so on.
const maxOptionDepth = 16

var optionSeparators = regexp.MustCompile(`[,\r\n]+`)

// optionDecoder is one step of the options attempt chain. The first decoder
// whose predicate matches the stored shape produces the options.
type optionDecoder struct {
	name    string
	matches func(gjson.Result) bool
	extract func(value gjson.Result, recurse func(gjson.Result) []string) []string
}

// optionDecoders is evaluated in order: array, string, object. Any other shape
// yields no options.
var optionDecoders = []optionDecoder{
	{name: "array", matches: gjson.Result.IsArray, extract: stringElements},
	{name: "string", matches: isString, extract: jsonOrDelimited},
	{name: "object", matches: gjson.Result.IsObject, extract: objectValues},
}

// Normalize converts one untrusted row into a canonical question. The boolean
// is false when the row must be dropped.
func Normalize(raw domain.QuizQuestionRaw) (domain.QuizQuestion, bool) {
	if raw.ID == "" || raw.Question == "" {
		return domain.QuizQuestion{}, false
	}

	options := DecodeOptions(raw.Options)
	if len(options) < 2 {
		return domain.QuizQuestion{}, false
	}

	index, ok := DecodeIndex(raw.CorrectOptionIndex)
	if !ok {
		return domain.QuizQuestion{}, false
	}
	// Upstream rows are authored both 0-based and 1-based. An index that only
	// fits after subtracting one is read as 1-based.
	if index >= len(options) && index-1 >= 0 && index-1 < len(options) {
		index--
	}
	if index < 0 || index >= len(options) {
		return domain.QuizQuestion{}, false
	}

	return domain.QuizQuestion{
		ID:                 raw.ID,
		Question:           raw.Question,
		Options:            options,
		CorrectOptionIndex: index,
	}, true
}

// NormalizeAll normalizes a batch, dropping rows that fail.
func NormalizeAll(rows []domain.QuizQuestionRaw) []domain.QuizQuestion {
	out := make([]domain.QuizQuestion, 0, len(rows))
	for _, row := range rows {
		if q, ok := Normalize(row); ok {
			out = append(out, q)
		}
	}
	return out
}

// DecodeOptions runs the options attempt chain over stored JSON.
func DecodeOptions(raw json.RawMessage) []string {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return []string{}
	}
	return decodeOptions(gjson.ParseBytes(raw), 0)
}

func decodeOptions(value gjson.Result, depth int) []string {
	if depth > maxOptionDepth {
		return []string{}
	}
	recurse := func(next gjson.Result) []string {
		return decodeOptions(next, depth+1)
	}
	for _, decoder := range optionDecoders {
		if decoder.matches(value) {
			return decoder.extract(value, recurse)
		}
	}
	return []string{}
}

func isString(value gjson.Result) bool {
	return value.Type == gjson.String
}

func stringElements(value gjson.Result, _ func(gjson.Result) []string) []string {
	items := value.Array()
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item.Type == gjson.String {
			out = append(out, item.Str)
		}
	}
	return out
}

func jsonOrDelimited(value gjson.Result, recurse func(gjson.Result) []string) []string {
	text := value.Str
	if trimmed := strings.TrimSpace(text); trimmed != "" && gjson.Valid(trimmed) {
		return recurse(gjson.Parse(trimmed))
	}

	pieces := optionSeparators.Split(text, -1)
	out := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		if piece = strings.TrimSpace(piece); piece != "" {
			out = append(out, piece)
		}
	}
	return out
}

func objectValues(value gjson.Result, recurse func(gjson.Result) []string) []string {
	out := []string{}
	for _, member := range orderedMembers(value) {
		for _, option := range recurse(member) {
			if option != "" {
				out = append(out, option)
			}
		}
	}
	return out
}

type objectMember struct {
	key   string
	value gjson.Result
}

// orderedMembers returns object values in the order a JavaScript runtime
// enumerates them: array-index keys ascending, then other keys in document
// order. A repeated key keeps its first position and its last value.
func orderedMembers(value gjson.Result) []gjson.Result {
	var members []objectMember
	seen := make(map[string]int)
	value.ForEach(func(key, val gjson.Result) bool {
		k := key.String()
		if pos, ok := seen[k]; ok {
			members[pos].value = val
			return true
		}
		seen[k] = len(members)
		members = append(members, objectMember{key: k, value: val})
		return true
	})

	sort.SliceStable(members, func(i, j int) bool {
		ai, iok := arrayIndexKey(members[i].key)
		aj, jok := arrayIndexKey(members[j].key)
		switch {
		case iok && jok:
			return ai < aj
		case iok:
			return true
		default:
			return false
		}
	})

	out := make([]gjson.Result, len(members))
	for i, m := range members {
		out[i] = m.value
	}
	return out
}

func arrayIndexKey(key string) (uint64, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || n == math.MaxUint32 {
		return 0, false
	}
	return n, true
}

// DecodeIndex accepts a JSON number or a numeric string holding a whole
// number. Every other shape is rejected.
func DecodeIndex(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return 0, false
	}
	value := gjson.ParseBytes(raw)

	var f float64
	switch value.Type {
	case gjson.Number:
		f = value.Num
	case gjson.String:
		text := strings.TrimSpace(value.Str)
		if text == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
